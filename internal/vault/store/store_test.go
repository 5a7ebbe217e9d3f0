package store

import (
	"context"
	"errors"
	"testing"
)

// memSlot is an in-memory Slot for store tests.
type memSlot struct {
	data    []byte
	written bool
	saves   int
	failing bool
}

func (m *memSlot) Load(context.Context) ([]byte, bool, error) {
	return m.data, m.written, nil
}

func (m *memSlot) Save(_ context.Context, data []byte) error {
	if m.failing {
		return errors.New("slot quota exceeded")
	}
	m.data = append([]byte(nil), data...)
	m.written = true
	m.saves++
	return nil
}

func (m *memSlot) Ping(context.Context) error { return nil }

func rec(id, category string) Record {
	return Record{
		ID:         id,
		Name:       id + ".pdf",
		MimeType:   "application/pdf",
		SizeLabel:  "1.00 KB",
		Category:   category,
		UploadDate: "৩০/৮/২০২৬",
		DataURL:    "data:application/pdf;base64,aGVsbG8=",
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("empty slot yields empty set", func(t *testing.T) {
		s, err := Open(ctx, &memSlot{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d records", s.Len())
		}
	})

	t.Run("corrupt slot yields empty set, not an error", func(t *testing.T) {
		s, err := Open(ctx, &memSlot{data: []byte("{{{not json"), written: true})
		if err != nil {
			t.Fatalf("corrupt slot must not fail Open: %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d records", s.Len())
		}
	})
}

func TestAddRemoveSequences(t *testing.T) {
	ctx := context.Background()

	t.Run("final content is adds not matched by removes, in order", func(t *testing.T) {
		s, _ := Open(ctx, &memSlot{})

		for _, id := range []string{"a", "b", "c", "d"} {
			if err := s.Add(ctx, rec(id, "Personal")); err != nil {
				t.Fatalf("add %s: %v", id, err)
			}
		}
		if err := s.Remove(ctx, "b"); err != nil {
			t.Fatalf("remove b: %v", err)
		}
		if err := s.Add(ctx, rec("e", "Father")); err != nil {
			t.Fatalf("add e: %v", err)
		}
		if err := s.Remove(ctx, "d"); err != nil {
			t.Fatalf("remove d: %v", err)
		}

		got := s.All()
		want := []string{"a", "c", "e"}
		if len(got) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(got))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("record[%d].ID = %q, want %q", i, got[i].ID, id)
			}
		}
	})

	t.Run("remove of missing id is a no-op without a save", func(t *testing.T) {
		slot := &memSlot{}
		s, _ := Open(ctx, slot)
		s.Add(ctx, rec("a", "Personal"))
		savesBefore := slot.saves

		if err := s.Remove(ctx, "ghost"); err != nil {
			t.Fatalf("remove of missing id must succeed: %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("store changed by no-op remove")
		}
		if slot.saves != savesBefore {
			t.Errorf("no-op remove wrote the slot")
		}
	})

	t.Run("every mutation persists", func(t *testing.T) {
		slot := &memSlot{}
		s, _ := Open(ctx, slot)
		s.Add(ctx, rec("a", "Personal"))
		s.Add(ctx, rec("b", "Personal"))
		s.Remove(ctx, "a")
		if slot.saves != 3 {
			t.Errorf("expected 3 slot writes, got %d", slot.saves)
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}

	s1, _ := Open(ctx, slot)
	first := rec("a", "Personal")
	first.Summary = "জাতীয় পরিচয়পত্র"
	s1.Add(ctx, first)
	s1.Add(ctx, rec("b", "Mother"))

	s2, err := Open(ctx, slot)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got := s2.All()
	want := s1.All()
	if len(got) != len(want) {
		t.Fatalf("expected %d records after reload, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}
	s, _ := Open(ctx, slot)
	s.Add(ctx, rec("a", "Personal"))
	s.Add(ctx, rec("b", "Personal"))

	slot.failing = true

	t.Run("add", func(t *testing.T) {
		if err := s.Add(ctx, rec("c", "Personal")); err == nil {
			t.Fatal("expected error from failing slot")
		}
		if s.Len() != 2 {
			t.Errorf("failed add left a partial record, len = %d", s.Len())
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := s.Remove(ctx, "a"); err == nil {
			t.Fatal("expected error from failing slot")
		}
		got := s.All()
		if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
			t.Errorf("failed remove changed the set: %+v", got)
		}
	})
}

func TestByCategory(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, &memSlot{})
	s.Add(ctx, rec("a", "Personal"))
	s.Add(ctx, rec("b", "Father"))
	s.Add(ctx, rec("c", "Personal"))

	personal := s.ByCategory("Personal")
	if len(personal) != 2 || personal[0].ID != "a" || personal[1].ID != "c" {
		t.Errorf("ByCategory(Personal) = %+v", personal)
	}
	if got := s.ByCategory("Mother"); len(got) != 0 {
		t.Errorf("expected no Mother records, got %+v", got)
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, &memSlot{})
	s.Add(ctx, rec("a", "Personal"))

	if _, ok := s.Get("a"); !ok {
		t.Error("expected to find record a")
	}
	if _, ok := s.Get("ghost"); ok {
		t.Error("did not expect to find record ghost")
	}
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, &memSlot{})

	var fired int
	s.OnChange(func() { fired++ })

	s.Add(ctx, rec("a", "Personal"))
	s.Remove(ctx, "a")
	s.Remove(ctx, "a") // no-op, must not notify

	if fired != 2 {
		t.Errorf("expected 2 change notifications, got %d", fired)
	}
}
