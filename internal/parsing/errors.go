package parsing

import "fmt"

// ParseError represents a failure to parse extracted text into records
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FallbackError represents a failed LLM fallback extraction. It is logged
// and never returned from the extractors' public API.
type FallbackError struct {
	Section string
	Message string
	Cause   error
}

func (e *FallbackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s fallback failed: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s fallback failed: %s", e.Section, e.Message)
}

func (e *FallbackError) Unwrap() error {
	return e.Cause
}
