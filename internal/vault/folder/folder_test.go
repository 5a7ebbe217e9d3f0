package folder

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestDefault(t *testing.T) {
	r := Default()

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 folders, got %d", len(defs))
	}

	wantOrder := []string{"Personal", "Father", "Mother"}
	for i, id := range wantOrder {
		if defs[i].ID != id {
			t.Errorf("folder[%d].ID = %q, want %q", i, defs[i].ID, id)
		}
	}

	if !r.Known("Personal") {
		t.Error("Personal should be a known folder")
	}
	if r.Known("Work") {
		t.Error("Work should not be a known folder")
	}
}

func TestVerify(t *testing.T) {
	r := Default()

	tests := []struct {
		name  string
		id    string
		input string
		want  bool
	}{
		{"correct credential", "Personal", "1234", true},
		{"wrong credential", "Personal", "12345", false},
		{"blank input", "Personal", "", false},
		{"no trimming", "Personal", " 1234", false},
		{"case sensitive", "Father", "FATHER786", false},
		{"father correct", "Father", "father786", true},
		{"mother correct", "Mother", "mother123", true},
		{"credential of another folder", "Mother", "father786", false},
		{"unknown folder", "Work", "1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Verify(tt.id, tt.input); got != tt.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.id, tt.input, got, tt.want)
			}
		})
	}
}

func TestVerifyBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret99"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	r, err := New(
		[]Definition{{ID: "Personal", Label: "Personal"}},
		map[string]string{"Personal": string(hash)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Verify("Personal", "secret99") {
		t.Error("expected bcrypt credential to verify")
	}
	if r.Verify("Personal", "secret98") {
		t.Error("expected wrong password to fail against bcrypt credential")
	}
}

func TestNewValidation(t *testing.T) {
	t.Run("rejects empty registry", func(t *testing.T) {
		if _, err := New(nil, nil); err == nil {
			t.Error("expected error for empty folder list")
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := New(
			[]Definition{{ID: "A"}, {ID: "A"}},
			map[string]string{"A": "x"},
		)
		if err == nil {
			t.Error("expected error for duplicate folder id")
		}
	})

	t.Run("rejects missing credential", func(t *testing.T) {
		_, err := New([]Definition{{ID: "A"}}, map[string]string{})
		if err == nil {
			t.Error("expected error for folder without credential")
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("loads folders from JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "folders.json")
		content := `{
			"folders": [
				{"id": "Docs", "label": "Documents", "description": "all docs", "icon": "📄", "credential": "open-sesame"}
			]
		}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		r, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		def, ok := r.Lookup("Docs")
		if !ok {
			t.Fatal("Docs folder not found")
		}
		if def.Label != "Documents" || def.Icon != "📄" {
			t.Errorf("unexpected definition: %+v", def)
		}
		if !r.Verify("Docs", "open-sesame") {
			t.Error("expected configured credential to verify")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}
