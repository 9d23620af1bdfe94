package sessionlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"voicecoach/core"
)

// Store is the on-disk session log. Entries are only ever appended.
type Store struct {
	path   string
	logger *core.Logger
	mu     sync.Mutex
}

func NewStore(path string, logger *core.Logger) *Store {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Store{
		path:   path,
		logger: logger.With(map[string]any{"component": "sessionlog", "path": path}),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the document. A missing file yields an error
// satisfying errors.Is(err, os.ErrNotExist).
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("sessionlog: read %q: %w", s.path, err)
	}
	return Decode(data)
}

// Latest returns the most recent entry. ok is false when the log exists but
// holds no sessions.
func (s *Store) Latest() (entry Entry, ok bool, err error) {
	doc, err := s.Load()
	if err != nil {
		return Entry{}, false, err
	}
	if len(doc.Sessions) == 0 {
		return Entry{}, false, nil
	}
	return doc.Sessions[len(doc.Sessions)-1], true, nil
}

// Append adds entry to the end of the log and rewrites the file. A missing or
// malformed file is treated as an empty log; a file from a newer layout is
// left untouched and ErrUnsupportedVersion is returned.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupportedVersion):
		return err
	case errors.Is(err, os.ErrNotExist):
		doc = Document{}
	default:
		s.logger.With(map[string]any{"error": err}).Warn("existing session log unreadable, starting a new one")
		doc = Document{}
	}

	doc.Sessions = append(doc.Sessions, entry)

	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sessionlog: mkdir %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("sessionlog: write %q: %w", s.path, err)
	}

	s.logger.With(map[string]any{"sessions": len(doc.Sessions)}).Info("session saved")
	return nil
}
