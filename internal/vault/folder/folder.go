// Package folder holds the static folder registry: the fixed set of
// vault folders and the gate credential associated with each one.
package folder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Definition describes one vault folder. The set is fixed at
// configuration time and never editable at runtime.
type Definition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Registry is an immutable list of folder definitions plus the
// folder-id -> gate credential mapping.
//
// Credentials here are a browsing deterrent, not access control. A
// value starting with "$2" is treated as a bcrypt hash; anything else
// is compared as a plaintext constant.
type Registry struct {
	defs  []Definition
	creds map[string]string
}

// New builds a registry, validating that every folder has exactly one
// credential and that folder ids are unique.
func New(defs []Definition, creds map[string]string) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no folders defined")
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("folder with empty id")
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate folder id %q", d.ID)
		}
		seen[d.ID] = true
		if creds[d.ID] == "" {
			return nil, fmt.Errorf("folder %q has no credential", d.ID)
		}
	}

	copied := make(map[string]string, len(creds))
	for id, c := range creds {
		copied[id] = c
	}

	return &Registry{defs: append([]Definition(nil), defs...), creds: copied}, nil
}

// Default returns the reference registry: three family folders with
// demo credentials.
func Default() *Registry {
	r, err := New(
		[]Definition{
			{ID: "Personal", Label: "আমার নথি (Personal)", Description: "আমার ব্যক্তিগত সকল ডকুমেন্টস", Icon: "👤"},
			{ID: "Father", Label: "বাবার নথি (Father)", Description: "বাবার গুরুত্বপূর্ণ নথিপত্র", Icon: "👨"},
			{ID: "Mother", Label: "মায়ের নথি (Mother)", Description: "মায়ের প্রয়োজনীয় ডকুমেন্টস", Icon: "👩"},
		},
		map[string]string{
			"Personal": "1234",
			"Father":   "father786",
			"Mother":   "mother123",
		},
	)
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return r
}

// folderFile is the on-disk shape of a folders config file.
type folderFile struct {
	Folders []struct {
		Definition
		Credential string `json:"credential"`
	} `json:"folders"`
}

// LoadFile reads a registry from a JSON folders file.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read folders file: %w", err)
	}

	var f folderFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse folders file %s: %w", path, err)
	}

	defs := make([]Definition, 0, len(f.Folders))
	creds := make(map[string]string, len(f.Folders))
	for _, entry := range f.Folders {
		defs = append(defs, entry.Definition)
		creds[entry.ID] = entry.Credential
	}

	return New(defs, creds)
}

// Definitions returns the folder list in configured order.
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	for _, d := range r.defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Known reports whether id names a configured folder.
func (r *Registry) Known(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Verify compares input against the folder's gate credential. Plaintext
// credentials are matched exactly: case-sensitive, no trimming. Bcrypt
// credentials are verified with a constant-time compare.
func (r *Registry) Verify(id, input string) bool {
	cred, ok := r.creds[id]
	if !ok {
		return false
	}
	if strings.HasPrefix(cred, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(cred), []byte(input)) == nil
	}
	return cred == input
}
