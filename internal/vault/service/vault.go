// Package service contains the vault controller: the per-session state
// machine over active folder and unlock state, and the only component
// that mutates the document store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"nothivault/internal/vault/codec"
	"nothivault/internal/vault/folder"
	"nothivault/internal/vault/store"

	"github.com/google/uuid"
)

// Sentinel errors for the service layer.
var (
	ErrNoFolder           = errors.New("no folder selected")
	ErrUnknownFolder      = errors.New("unknown folder")
	ErrLocked             = errors.New("folder is locked")
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrUploadInFlight     = errors.New("an upload is already in progress")
	ErrNotFound           = errors.New("document not found")
	ErrEmptyUpload        = errors.New("uploaded file is empty or unreadable")
)

// User-facing Bengali messages, kept verbatim from the vault UI.
const (
	MsgWrongPassword = "ভুল পাসওয়ার্ড! আবার চেষ্টা করুন।"
	MsgConfirmDelete = "আপনি কি এই নথিটি মুছে ফেলতে চান?"
)

// DocumentStore is the store surface the controller needs. *store.Store
// satisfies it; tests may inject a fake.
type DocumentStore interface {
	Add(ctx context.Context, rec store.Record) error
	Remove(ctx context.Context, id string) error
	Get(id string) (store.Record, bool)
	ByCategory(category string) []store.Record
}

// Summarizer produces a short description of a document. It never
// fails: on any trouble it returns placeholder text instead.
type Summarizer interface {
	Summarize(ctx context.Context, name, mimeType string, data []byte) string
}

// State is a snapshot of a session for clients.
type State struct {
	ActiveFolder string `json:"active_folder,omitempty"`
	Unlocked     bool   `json:"unlocked"`
	Uploading    bool   `json:"uploading"`
	Error        string `json:"error,omitempty"`
}

// Session is one user's vault controller. Selecting a folder always
// re-enters the locked state; unlock status never carries over between
// folders or across sessions.
type Session struct {
	mu         sync.Mutex
	registry   *folder.Registry
	store      DocumentStore
	summarizer Summarizer // nil disables enrichment

	active    string
	unlocked  bool
	uploading bool
	errMsg    string
	lastSeen  time.Time
}

// NewSession creates a controller with no folder selected.
func NewSession(registry *folder.Registry, docs DocumentStore, summarizer Summarizer) *Session {
	return &Session{
		registry:   registry,
		store:      docs,
		summarizer: summarizer,
		lastSeen:   time.Now(),
	}
}

// SelectFolder makes id the active folder, resets unlock state to
// locked and clears any pending error.
func (s *Session) SelectFolder(id string) error {
	if !s.registry.Known(id) {
		return fmt.Errorf("%w: %s", ErrUnknownFolder, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	s.unlocked = false
	s.errMsg = ""
	return nil
}

// SubmitCredential compares text against the active folder's gate
// credential. A match unlocks the folder and clears the error; a
// mismatch (blank input included) keeps it locked and sets the error
// message shown to the user.
func (s *Session) SubmitCredential(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return ErrNoFolder
	}

	if !s.registry.Verify(s.active, text) {
		s.errMsg = MsgWrongPassword
		return ErrCredentialMismatch
	}

	s.unlocked = true
	s.errMsg = ""
	return nil
}

// Upload creates a record from raw bytes in the unlocked active folder.
// Only one upload per session may be in flight at a time; delete and
// download of already-stored files are not blocked while it runs.
func (s *Session) Upload(ctx context.Context, name, mimeType string, data []byte) (store.Record, error) {
	s.mu.Lock()
	if s.active == "" {
		s.mu.Unlock()
		return store.Record{}, ErrNoFolder
	}
	if !s.unlocked {
		s.mu.Unlock()
		return store.Record{}, ErrLocked
	}
	if s.uploading {
		s.mu.Unlock()
		return store.Record{}, ErrUploadInFlight
	}
	s.uploading = true
	category := s.active
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.uploading = false
		s.mu.Unlock()
	}()

	if len(data) == 0 {
		return store.Record{}, ErrEmptyUpload
	}

	rec := store.Record{
		ID:         uuid.NewString(),
		Name:       sanitizeFilename(name),
		MimeType:   mimeType,
		SizeLabel:  sizeLabel(len(data)),
		Category:   category,
		UploadDate: bengaliDate(time.Now()),
		DataURL:    codec.Encode(mimeType, data),
	}

	if s.summarizer != nil {
		rec.Summary = s.summarizer.Summarize(ctx, rec.Name, mimeType, data)
	}

	if err := s.store.Add(ctx, rec); err != nil {
		return store.Record{}, fmt.Errorf("store document: %w", err)
	}

	slog.Info("document uploaded",
		"id", rec.ID,
		"name", rec.Name,
		"category", rec.Category,
		"size", rec.SizeLabel,
	)
	return rec, nil
}

// Delete removes a record from the unlocked active folder. It only acts
// when the caller has confirmed; declining is a no-op with no side
// effects, as is a delete of an id that is already gone.
func (s *Session) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return nil
	}

	s.mu.Lock()
	active, unlocked := s.active, s.unlocked
	s.mu.Unlock()

	if active == "" {
		return ErrNoFolder
	}
	if !unlocked {
		return ErrLocked
	}

	if rec, ok := s.store.Get(id); ok && rec.Category != active {
		// Records of other folders are invisible to this session.
		return ErrNotFound
	}

	return s.store.Remove(ctx, id)
}

// Download reconstructs the original bytes of a record in the unlocked
// active folder. It never mutates the store.
func (s *Session) Download(id string) (name, mimeType string, data []byte, err error) {
	s.mu.Lock()
	active, unlocked := s.active, s.unlocked
	s.mu.Unlock()

	if active == "" {
		return "", "", nil, ErrNoFolder
	}
	if !unlocked {
		return "", "", nil, ErrLocked
	}

	rec, ok := s.store.Get(id)
	if !ok || rec.Category != active {
		return "", "", nil, ErrNotFound
	}

	mimeType, data, err = codec.Decode(rec.DataURL)
	if err != nil {
		return "", "", nil, fmt.Errorf("decode payload of %s: %w", id, err)
	}
	return rec.Name, mimeType, data, nil
}

// Files returns the unlocked active folder's records in insertion
// order, recomputed from the store on every call.
func (s *Session) Files() ([]store.Record, error) {
	s.mu.Lock()
	active, unlocked := s.active, s.unlocked
	s.mu.Unlock()

	if active == "" {
		return nil, ErrNoFolder
	}
	if !unlocked {
		return nil, ErrLocked
	}
	return s.store.ByCategory(active), nil
}

// State returns a snapshot for clients.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ActiveFolder: s.active,
		Unlocked:     s.unlocked,
		Uploading:    s.uploading,
		Error:        s.errMsg,
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// --- Helpers ---

// sizeLabel renders a byte count in kilobytes at two decimals.
func sizeLabel(n int) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}

// bengaliDigits maps ASCII digits to Bengali numerals.
var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// bengaliDate formats t the way the bn-BD locale renders a date:
// day/month/year in Bengali numerals, no zero padding.
func bengaliDate(t time.Time) string {
	return bengaliDigits.Replace(fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year()))
}

// sanitizeFilename strips directory components and limits length.
func sanitizeFilename(name string) string {
	// Normalize Windows-style backslashes before filepath.Base,
	// which is platform-specific.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	if len(name) > 255 {
		ext := filepath.Ext(name)
		if len(ext) > 255 {
			// A "dot early in the name" extension; keeping it would
			// leave nothing to truncate.
			ext = ""
		}
		cut := 255 - len(ext)
		// Back off to a rune boundary so truncation never splits a
		// multibyte character.
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}

	if name == "" || name == "." || name == "/" {
		name = "document"
	}
	return name
}
