package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"nothivault/internal/vault/folder"
	"nothivault/internal/vault/service"
	"nothivault/internal/vault/store"

	"github.com/labstack/echo/v4"
)

func newExportFixture(t *testing.T) (*Handler, *service.Session) {
	t.Helper()

	slot := store.NewFileSlot(filepath.Join(t.TempDir(), "vault.json"))
	st, err := store.Open(context.Background(), slot)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	registry := folder.Default()
	sess := service.NewSession(registry, st, nil)
	return NewHandler(nil, registry, st, slot, 1024), sess
}

func exportRequest(t *testing.T, h *Handler, sess *service.Session, folderID string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/folders/"+folderID+"/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(folderID)
	c.Set(sessionKey, sess)

	if err := h.HandleExportFolder(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleExportFolder(t *testing.T) {
	t.Run("nonexistent folder is 404, not locked", func(t *testing.T) {
		h, sess := newExportFixture(t)
		rec := exportRequest(t, h, sess, "Work")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("known but inactive folder is 403", func(t *testing.T) {
		h, sess := newExportFixture(t)
		rec := exportRequest(t, h, sess, "Father")
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("unlocked active folder exports a zip", func(t *testing.T) {
		h, sess := newExportFixture(t)
		if err := sess.SelectFolder("Personal"); err != nil {
			t.Fatalf("select: %v", err)
		}
		if err := sess.SubmitCredential("1234"); err != nil {
			t.Fatalf("unlock: %v", err)
		}

		rec := exportRequest(t, h, sess, "Personal")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/zip" {
			t.Errorf("content type = %q, want application/zip", ct)
		}
	})
}
