// Package ingestion reads job descriptions and resumes from disk or uploads,
// extracts their plain text and produces the normalized variant used for matching.
package ingestion

import (
	"fmt"
	"io/fs"
)

// UnsupportedFormatError is returned for files whose format cannot be extracted
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "<no extension>"
	}
	return fmt.Sprintf("unsupported format %q for %s: accepted formats are .txt, .pdf, .docx", ext, e.Path)
}

// NotFoundError is returned when an input file does not exist
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match
func (e *NotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

// ExtractionError represents a failure while reading a document's contents
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
