package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"nothivault/internal/vault/export"
	"nothivault/internal/vault/folder"
	"nothivault/internal/vault/service"
	"nothivault/internal/vault/store"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the vault API.
type Handler struct {
	sessions    *service.Manager
	registry    *folder.Registry
	store       *store.Store
	slot        store.Slot
	maxFileSize int64
}

// NewHandler creates a new handler with its dependencies.
func NewHandler(sessions *service.Manager, registry *folder.Registry, st *store.Store, slot store.Slot, maxFileSize int64) *Handler {
	return &Handler{
		sessions:    sessions,
		registry:    registry,
		store:       st,
		slot:        slot,
		maxFileSize: maxFileSize,
	}
}

// HandleFolders handles GET /api/folders.
// Returns the folder definitions; credentials are never exposed.
func (h *Handler) HandleFolders(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"folders": h.registry.Definitions(),
	})
}

// HandleState handles GET /api/state.
func (h *Handler) HandleState(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionFrom(c).State())
}

// HandleSelectFolder handles POST /api/folders/:id/select.
// Always re-enters the locked state for the chosen folder.
func (h *Handler) HandleSelectFolder(c echo.Context) error {
	if err := sessionFrom(c).SelectFolder(c.Param("id")); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionFrom(c).State())
}

// HandleUnlock handles POST /api/unlock with body {"password": "..."}.
func (h *Handler) HandleUnlock(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}

	if err := sessionFrom(c).SubmitCredential(body.Password); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionFrom(c).State())
}

// HandleListFiles handles GET /api/files.
// Lists the unlocked active folder's records in insertion order.
func (h *Handler) HandleListFiles(c echo.Context) error {
	files, err := sessionFrom(c).Files()
	if err != nil {
		return mapServiceError(c, err)
	}
	if files == nil {
		files = []store.Record{}
	}
	return c.JSON(http.StatusOK, echo.Map{"files": files})
}

// HandleUpload handles POST /api/upload.
// Accepts a multipart form with a "file" field.
func (h *Handler) HandleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "file is required (use form field 'file')",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
			"error": "file exceeds maximum allowed size",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read uploaded file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read uploaded file"})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	rec, err := sessionFrom(c).Upload(c.Request().Context(), fileHeader.Filename, mimeType, data)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// HandleDelete handles DELETE /api/files/:id.
// Without ?confirm=true nothing is deleted; the confirmation prompt is
// echoed back instead.
func (h *Handler) HandleDelete(c echo.Context) error {
	confirmed := c.QueryParam("confirm") == "true"
	if !confirmed {
		return c.JSON(http.StatusOK, echo.Map{
			"deleted": false,
			"message": service.MsgConfirmDelete,
		})
	}

	if err := sessionFrom(c).Delete(c.Request().Context(), c.Param("id"), true); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// HandleDownload handles GET /api/files/:id/download.
// Serves the reconstructed original bytes as an attachment.
func (h *Handler) HandleDownload(c echo.Context) error {
	name, mimeType, data, err := sessionFrom(c).Download(c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Blob(http.StatusOK, mimeType, data)
}

// HandleExportFolder handles GET /api/folders/:id/export.
// Packs the unlocked active folder into a single ZIP attachment.
func (h *Handler) HandleExportFolder(c echo.Context) error {
	sess := sessionFrom(c)
	id := c.Param("id")
	if !h.registry.Known(id) {
		return mapServiceError(c, service.ErrUnknownFolder)
	}
	if sess.State().ActiveFolder != id {
		return mapServiceError(c, service.ErrLocked)
	}

	files, err := sess.Files()
	if err != nil {
		return mapServiceError(c, err)
	}

	archive, err := export.FolderArchive(files)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build archive"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, id+".zip"))
	return c.Blob(http.StatusOK, "application/zip", archive)
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(c echo.Context) error {
	records := h.store.All()

	perFolder := make(map[string]int)
	var totalBytes int64
	for _, r := range records {
		perFolder[r.Category]++
		totalBytes += decodedSize(r.DataURL)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_documents":    len(records),
		"per_folder":         perFolder,
		"stored_bytes":       totalBytes,
		"stored_bytes_human": humanizeBytes(totalBytes),
	})
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	slotStatus := "ok"

	if err := h.slot.Ping(c.Request().Context()); err != nil {
		status = "degraded"
		slotStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": status,
		"slot":   slotStatus,
	})
}

// mapServiceError translates service-layer errors into HTTP responses.
// Errors surface in place; no redirect or state change accompanies them.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNoFolder):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no folder selected"})
	case errors.Is(err, service.ErrUnknownFolder):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown folder"})
	case errors.Is(err, service.ErrLocked):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "folder is locked"})
	case errors.Is(err, service.ErrCredentialMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": service.MsgWrongPassword})
	case errors.Is(err, service.ErrUploadInFlight):
		return c.JSON(http.StatusLocked, echo.Map{"error": "an upload is already in progress"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	case errors.Is(err, service.ErrEmptyUpload):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "uploaded file is empty or unreadable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// decodedSize computes the original byte length from a base64 data URL
// without decoding it.
func decodedSize(dataURL string) int64 {
	i := len(dataURL)
	for i > 0 && dataURL[i-1] == '=' {
		i--
	}
	comma := -1
	for j := 0; j < len(dataURL); j++ {
		if dataURL[j] == ',' {
			comma = j
			break
		}
	}
	if comma < 0 {
		return 0
	}
	encoded := i - comma - 1
	if encoded <= 0 {
		return 0
	}
	return int64(encoded*6) / 8
}

// humanizeBytes formats a byte count into a human-readable string.
func humanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
