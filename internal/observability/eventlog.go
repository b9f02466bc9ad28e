package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventLog is an append-only log of processing events, one line per event:
// "<timestamp>\t<event>\t<detail>". A nil *EventLog discards everything.
type EventLog struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// NewEventLog creates an event log writing to w
func NewEventLog(w io.Writer) *EventLog {
	return &EventLog{w: w, now: time.Now}
}

// OpenEventLog opens (or creates) an event log file in append mode
func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	return &EventLog{w: f, closer: f, now: time.Now}, nil
}

// Record appends one event. Write failures are dropped: the log never
// interrupts processing.
func (l *EventLog) Record(event, detail string) {
	if l == nil || l.w == nil {
		return
	}
	detail = strings.NewReplacer("\n", " ", "\t", " ").Replace(detail)

	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now().Format("2006-01-02T15:04:05")
	_, _ = fmt.Fprintf(l.w, "%s\t%s\t%s\n", ts, event, detail)
}

// Close closes the underlying file, if any
func (l *EventLog) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
