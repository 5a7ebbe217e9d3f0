package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"nothivault/internal/vault/folder"
)

// Manager tracks live sessions by opaque token.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	registry   *folder.Registry
	store      DocumentStore
	summarizer Summarizer
	ttl        time.Duration
}

// NewManager creates a session manager. Sessions idle longer than ttl
// are removed by PruneIdle.
func NewManager(registry *folder.Registry, docs DocumentStore, summarizer Summarizer, ttl time.Duration) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		registry:   registry,
		store:      docs,
		summarizer: summarizer,
		ttl:        ttl,
	}
}

// Create starts a fresh session and returns its token.
func (m *Manager) Create() (string, *Session, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s := NewSession(m.registry, m.store, m.summarizer)

	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()

	return token, s, nil
}

// Get resolves a token and marks the session as recently used.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	m.mu.Unlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle drops sessions idle past the manager's TTL and returns how
// many were removed.
func (m *Manager) PruneIdle() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	var pruned int
	for token, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, token)
			pruned++
		}
	}
	return pruned
}

// generateToken produces a URL-safe random string.
func generateToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("crypto/rand failure: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
