package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// SessionMetadata opens every session log.
type SessionMetadata struct {
	SessionID string `json:"session_id"`
	Persona   string `json:"persona,omitempty"`
	StartedAt string `json:"started_at"`
}

// LogEntry is one line after the metadata.
type LogEntry struct {
	Timestamp string         `json:"ts"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogWriter receives every entry a session logger emits.
type LogWriter interface {
	Write(level, msg string, attrs map[string]any)
	Close()
}

// SessionLogWriter appends JSON lines to <dir>/<session>.jsonl. A
// <session>.active marker exists until Close, so a crashed process leaves a
// visible trace.
type SessionLogWriter struct {
	mu        sync.Mutex
	file      *os.File
	dir       string
	sessionID string
	startedAt time.Time
	entries   int
}

func NewSessionLogWriter(dir, sessionID, persona string) (*SessionLogWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session log: mkdir %q: %w", dir, err)
	}

	w := &SessionLogWriter{dir: dir, sessionID: sessionID, startedAt: time.Now().UTC()}
	f, err := os.OpenFile(w.Path(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("session log: open %q: %w", w.Path(), err)
	}
	w.file = f

	if err := w.writeLine(SessionMetadata{
		SessionID: sessionID,
		Persona:   persona,
		StartedAt: w.startedAt.Format(time.RFC3339),
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("session log: write metadata: %w", err)
	}

	if marker, err := os.Create(w.markerPath()); err == nil {
		marker.Close()
	}
	return w, nil
}

func (w *SessionLogWriter) Path() string {
	return filepath.Join(w.dir, w.sessionID+".jsonl")
}

func (w *SessionLogWriter) markerPath() string {
	return filepath.Join(w.dir, w.sessionID+".active")
}

func (w *SessionLogWriter) Write(level, msg string, attrs map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return
	}
	w.entries++
	_ = w.writeLine(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		Attrs:     attrs,
	})
}

// Close writes a closing entry with the entry count and duration, closes the
// file and removes the marker. Further writes are dropped.
func (w *SessionLogWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return
	}

	_ = w.writeLine(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     LevelInfo,
		Message:   "session log closed",
		Attrs: map[string]any{
			"entries":     w.entries,
			"duration_ms": time.Since(w.startedAt).Milliseconds(),
		},
	})
	w.file.Close()
	w.file = nil
	os.Remove(w.markerPath())
}

// writeLine must be called with mu held or before w is shared.
func (w *SessionLogWriter) writeLine(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.file.Write(append(data, '\n'))
	return err
}

// NewSessionLogger returns a logger that sends each entry to base and to
// writer. Attributes already on base are kept, and loggers derived with With
// keep teeing.
func NewSessionLogger(base *Logger, writer LogWriter) *Logger {
	return NewLogger(func(level string, msg string, attrs map[string]interface{}) {
		if base.handlerFunc != nil {
			base.handlerFunc(level, msg, attrs)
		}
		writer.Write(level, msg, attrs)
	}).With(base.attrs)
}
