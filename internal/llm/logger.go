package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/theduardomaciel/projeto-ia/internal/observability"
)

// Interaction is one line of the LLM session log
type Interaction struct {
	Timestamp  time.Time      `json:"timestamp"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
	Purpose    string         `json:"purpose"`
	Prompt     string         `json:"prompt"`
	Response   string         `json:"response"`
	TokensUsed int            `json:"tokens_used"`
	Latency    float64        `json:"latency"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SessionStats summarizes the calls recorded by an InteractionLogger
type SessionStats struct {
	TotalCalls      int     `json:"total_calls"`
	SuccessfulCalls int     `json:"successful_calls"`
	FailedCalls     int     `json:"failed_calls"`
	TotalTokens     int     `json:"total_tokens"`
	AvgLatency      float64 `json:"avg_latency"`
	MinLatency      float64 `json:"min_latency"`
	MaxLatency      float64 `json:"max_latency"`
}

// InteractionLogger appends every LLM call to a JSONL session file. Only
// running totals stay in memory; the interactions themselves live in the file.
type InteractionLogger struct {
	mu         sync.Mutex
	w          io.Writer
	closer     io.Closer
	path       string
	stats      SessionStats
	latencySum float64
}

// NewInteractionLogger writes interactions to w
func NewInteractionLogger(w io.Writer) *InteractionLogger {
	return &InteractionLogger{w: w}
}

// OpenSessionLog creates llm_session_<timestamp>.jsonl under dir
func OpenSessionLog(dir string, now time.Time) (*InteractionLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("llm_session_%s.jsonl", now.Format("20060102_150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	return &InteractionLogger{w: f, closer: f, path: path}, nil
}

// Path returns the session file path, empty for writer-backed loggers
func (l *InteractionLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Log records one interaction. A nil logger discards it.
func (l *InteractionLogger) Log(entry Interaction) {
	if l == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("failed to encode llm interaction", slog.Any("error", err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(entry)
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		slog.Warn("failed to write llm interaction", slog.Any("error", err))
	}
}

func (l *InteractionLogger) record(e Interaction) {
	st := &l.stats
	st.TotalCalls++
	if e.Success {
		st.SuccessfulCalls++
	} else {
		st.FailedCalls++
	}
	st.TotalTokens += e.TokensUsed
	if st.TotalCalls == 1 || e.Latency < st.MinLatency {
		st.MinLatency = e.Latency
	}
	if e.Latency > st.MaxLatency {
		st.MaxLatency = e.Latency
	}
	l.latencySum += e.Latency
	st.AvgLatency = l.latencySum / float64(st.TotalCalls)
}

// Stats aggregates the interactions logged so far
func (l *InteractionLogger) Stats() SessionStats {
	if l == nil {
		return SessionStats{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Close closes the underlying file, if any
func (l *InteractionLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// LoggingClient wraps a Client, recording each call in the session log and
// in the LLM metrics.
type LoggingClient struct {
	next    Client
	log     *InteractionLogger
	counter *TokenCounter
}

// NewLoggingClient decorates next. log may be nil.
func NewLoggingClient(next Client, log *InteractionLogger) *LoggingClient {
	return &LoggingClient{next: next, log: log, counter: NewTokenCounter()}
}

// Call delegates to the wrapped client
func (c *LoggingClient) Call(ctx context.Context, prompt string, temperature float32, maxTokens int) Response {
	resp := c.next.Call(ctx, prompt, temperature, maxTokens)
	purpose := PurposeFrom(ctx)

	if resp.Success && resp.TokensUsed == 0 && c.counter != nil {
		resp.TokensUsed = c.counter.Count(prompt, resp.Model) + c.counter.Count(resp.Content, resp.Model)
	}

	status := "success"
	if !resp.Success {
		status = "error"
		slog.Warn("llm call failed",
			slog.String("provider", resp.Provider),
			slog.String("purpose", purpose),
			slog.String("error", resp.Error))
	}
	observability.LLMRequestsTotal.WithLabelValues(resp.Provider, purpose, status).Inc()
	observability.LLMRequestDuration.WithLabelValues(resp.Provider).Observe(resp.Latency.Seconds())

	c.log.Log(Interaction{
		Timestamp:  time.Now(),
		Provider:   resp.Provider,
		Model:      resp.Model,
		Purpose:    purpose,
		Prompt:     prompt,
		Response:   resp.Content,
		TokensUsed: resp.TokensUsed,
		Latency:    resp.Latency.Seconds(),
		Success:    resp.Success,
		Error:      resp.Error,
		Metadata: map[string]any{
			"temperature": temperature,
			"max_tokens":  maxTokens,
		},
	})
	return resp
}

// Provider returns the wrapped client's provider
func (c *LoggingClient) Provider() string { return c.next.Provider() }

// Model returns the wrapped client's model
func (c *LoggingClient) Model() string { return c.next.Model() }

// Stats returns the session statistics
func (c *LoggingClient) Stats() SessionStats { return c.log.Stats() }

// Close closes the wrapped client and the session log
func (c *LoggingClient) Close() error {
	err := c.next.Close()
	if lerr := c.log.Close(); err == nil {
		err = lerr
	}
	return err
}
