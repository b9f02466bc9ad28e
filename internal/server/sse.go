package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/theduardomaciel/projeto-ia/internal/pipeline"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string, status int) {
	s.WriteEvent("error", map[string]any{"error": message, "status": status}) //nolint:errcheck
}

// handleAnalyzeStream runs an analysis like handleAnalyze but reports each
// completed stage as a "progress" event before the final "result" event.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseAnalyzeRequest(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	in.OnProgress = func(e pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", e); err != nil {
			s.logger.Debug("failed to write progress event", "error", err)
		}
	}

	result, err := s.analyzer.Analyze(r.Context(), in)
	if err != nil {
		s.logger.Warn("streamed analysis failed", "error", err)
		sse.WriteError(err.Error(), HTTPStatus(err))
		return
	}
	if err := sse.WriteEvent("result", s.finish(r, result)); err != nil {
		s.logger.Debug("failed to write result event", "error", err)
	}
}
