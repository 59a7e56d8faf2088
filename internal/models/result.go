package models

import "time"

// ParseResponse is the body of a successful parse request.
type ParseResponse struct {
	ID       string        `json:"id"`
	Record   *ResumeRecord `json:"record"`
	Warnings []Warning     `json:"warnings"`
	Renders  []RenderInfo  `json:"renders"`
}

// RenderInfo describes one requested output format. Exactly one of
// DownloadURL and Error is set.
type RenderInfo struct {
	Format      string `json:"format"`
	Filename    string `json:"filename,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

type StructureRequest struct {
	Payload string `json:"payload"`
}

type StructureResponse struct {
	Record   *ResumeRecord `json:"record"`
	Warnings []Warning     `json:"warnings"`
}

type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type ResultResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Record       *ResumeRecord `json:"record,omitempty"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	Renders      []RenderInfo  `json:"renders,omitempty"`
	Fields       []string      `json:"fields,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	Document     *DocumentInfo `json:"document,omitempty"`
}

// DocumentInfo describes the upload a parse result was produced from. The
// storage path stays internal.
type DocumentInfo struct {
	ID               string    `json:"id"`
	OriginalFileName string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
}
