package service

import (
	"testing"
	"time"

	"nothivault/internal/vault/folder"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(folder.Default(), &fakeStore{}, nil, ttl)
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(time.Hour)

	token, s, err := m.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(token) != 32 {
		t.Errorf("token length = %d, want 32", len(token))
	}

	got, ok := m.Get(token)
	if !ok || got != s {
		t.Error("expected to resolve the created session")
	}

	if _, ok := m.Get("unknown-token"); ok {
		t.Error("unknown token must not resolve")
	}
}

func TestManagerTokensAreUnique(t *testing.T) {
	m := newTestManager(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, _, err := m.Create()
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token: %s", token)
		}
		seen[token] = true
	}
}

func TestManagerPruneIdle(t *testing.T) {
	m := newTestManager(50 * time.Millisecond)

	staleToken, stale, _ := m.Create()
	freshToken, fresh, _ := m.Create()

	// Age the first session past the TTL, keep the second fresh.
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Minute)
	stale.mu.Unlock()
	fresh.touch()

	if pruned := m.PruneIdle(); pruned != 1 {
		t.Fatalf("expected 1 pruned session, got %d", pruned)
	}
	if _, ok := m.Get(staleToken); ok {
		t.Error("stale session still resolvable")
	}
	if _, ok := m.Get(freshToken); !ok {
		t.Error("fresh session was pruned")
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := generateToken(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, c := range token {
		found := false
		for _, valid := range charset {
			if c == valid {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("token contains invalid character: %c", c)
		}
	}
}
