package models

import "time"

// Session links an uploaded document's extracted text, its compliance report
// and the latest rewrite. The JSON layout is the persisted record format.
type Session struct {
	ID               string           `json:"file_id"`
	OriginalFilename string           `json:"original_filename"`
	DocumentText     string           `json:"document_text"`
	ComplianceReport ComplianceReport `json:"compliance_report"`
	ModifiedText     *string          `json:"modified_text,omitempty"`
	ModifiedFilename string           `json:"modified_filename,omitempty"`
	CreatedAt        time.Time        `json:"timestamp"`
}

// HasModified reports whether a rewrite has been stored for the session.
func (s *Session) HasModified() bool {
	return s != nil && s.ModifiedText != nil && s.ModifiedFilename != ""
}

// SetModified records a rewrite, replacing any earlier one.
func (s *Session) SetModified(text, filename string) {
	s.ModifiedText = &text
	s.ModifiedFilename = filename
}
