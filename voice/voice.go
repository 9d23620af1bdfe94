// Package voice switches the speaking persona of the TTS provider owned by the
// dialogue driver.
package voice

import (
	"sync"

	"voicecoach/core"
)

// Options selects a TTS voice and speaking style.
type Options struct {
	Voice string `json:"voice"`
	Style string `json:"style,omitempty"`
}

// Controller applies voice options to whatever is synthesising speech.
type Controller interface {
	UpdateOptions(opts Options) error
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(opts Options) error

func (f ControllerFunc) UpdateOptions(opts Options) error {
	return f(opts)
}

// Static remembers the last options it was given. Used when no live TTS is
// attached (console, MCP).
type Static struct {
	mu      sync.Mutex
	current Options
	logger  *core.Logger
}

func NewStatic(initial Options, logger *core.Logger) *Static {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Static{current: initial, logger: logger}
}

func (s *Static) UpdateOptions(opts Options) error {
	s.mu.Lock()
	s.current = opts
	s.mu.Unlock()
	s.logger.With(map[string]any{"voice": opts.Voice, "style": opts.Style}).Info("tts options updated")
	return nil
}

// Current returns the options most recently applied.
func (s *Static) Current() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
