package store

// Record is one stored document. Records are immutable after creation:
// the only way to change one is to delete it and upload again.
//
// The JSON field names are the persisted slot format and must stay
// stable across versions.
type Record struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MimeType   string `json:"type"`
	SizeLabel  string `json:"size"`
	Category   string `json:"category"`
	UploadDate string `json:"uploadDate"`
	Summary    string `json:"summary,omitempty"`
	DataURL    string `json:"dataUrl"`
}
