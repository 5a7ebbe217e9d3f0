// Package store owns the authoritative set of document records and
// keeps it durable: every successful mutation rewrites the persistence
// slot before it returns, so the slot never lags the in-memory set by
// more than the operation in flight.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Store is the in-memory record set synchronized to a Slot.
type Store struct {
	mu      sync.Mutex
	slot    Slot
	records []Record
	subs    []func()
}

// Open loads the record set from slot. A slot that was never written is
// an empty set; a corrupt slot is logged and treated as empty rather
// than failing the caller.
func Open(ctx context.Context, slot Slot) (*Store, error) {
	raw, ok, err := slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vault slot: %w", err)
	}

	s := &Store{slot: slot}
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.records); err != nil {
			slog.Warn("vault slot is corrupt, starting with an empty set", "error", err)
			s.records = nil
		}
	}
	return s, nil
}

// OnChange registers fn to run after every successful mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Add appends rec and persists the full set. The caller has already
// validated rec.Category against the folder registry. If the slot write
// fails the append is rolled back and the error returned.
func (s *Store) Add(ctx context.Context, rec Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	if err := s.persistLocked(ctx); err != nil {
		s.records = s.records[:len(s.records)-1]
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove deletes the record with the given id and persists the set. An
// unknown id is a successful no-op: the delete may race with an earlier
// removal or be issued twice.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		s.records = append(s.records[:idx], append([]Record{removed}, s.records[idx:]...)...)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// ByCategory returns the records filed under category, in insertion
// order. The result is a copy, recomputed on every call.
func (s *Store) ByCategory(category string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// All returns a copy of the full record set in insertion order.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persistLocked serializes the record set current at this moment and
// writes it to the slot. Must be called with s.mu held.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("serialize vault records: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("save vault slot: %w", err)
	}
	return nil
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
