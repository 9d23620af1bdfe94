// Package tutor tracks which programming topic a learner is studying and how
// the agent is currently interacting with them.
package tutor

import (
	"errors"
	"fmt"
	"strings"

	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/voice"
)

// ErrInvalidMode is returned by ParseMode for anything outside the three modes.
var ErrInvalidMode = errors.New("tutor: invalid mode")

// Mode is the interaction style for the selected topic.
type Mode string

const (
	ModeLearn     Mode = "learn"
	ModeQuiz      Mode = "quiz"
	ModeTeachBack Mode = "teach_back"
)

// Modes lists every valid mode in presentation order.
var Modes = []Mode{ModeLearn, ModeQuiz, ModeTeachBack}

// ParseMode lower-cases and trims s.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeLearn, ModeQuiz, ModeTeachBack:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// State is the learning context of one conversation.
type State struct {
	CurrentTopicID string
	CurrentTopic   *catalog.TopicRecord
	Mode           Mode
}

// Tracker holds the State for a single session. It is driven one tool call at
// a time and is not shared between sessions.
type Tracker struct {
	catalog *catalog.Catalog
	voice   voice.Controller
	voices  map[Mode]voice.Options
	state   State
	logger  *core.Logger
}

// NewTracker starts in learn mode with no topic. vc may be nil when nothing
// can switch voices.
func NewTracker(cat *catalog.Catalog, vc voice.Controller, logger *core.Logger) *Tracker {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Tracker{
		catalog: cat,
		voice:   vc,
		voices:  DefaultVoices(),
		state:   State{Mode: ModeLearn},
		logger:  logger.With(map[string]any{"component": "tutor"}),
	}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	s := t.state
	if s.CurrentTopic != nil {
		topic := *s.CurrentTopic
		s.CurrentTopic = &topic
	}
	return s
}

// SelectTopic makes topicID the current topic. An unknown id leaves state
// alone and returns the list of valid ids.
func (t *Tracker) SelectTopic(topicID string) string {
	topic, ok := t.catalog.Find(strings.TrimSpace(topicID))
	if !ok {
		t.logger.With(map[string]any{"topic_id": topicID}).Info("unknown topic requested")
		return "Topic not found. Available topics are: " + strings.Join(t.catalog.IDs(), ", ")
	}

	t.state.CurrentTopicID = topic.ID
	t.state.CurrentTopic = &topic
	t.logger.With(map[string]any{"topic_id": topic.ID}).Info("topic selected")

	return fmt.Sprintf(
		"Topic set to %s. Ask the user if they want to 'Learn', be 'Quizzed', or 'Teach it back'.",
		topic.Title,
	)
}

// SetLearningMode switches mode. Without a selected topic the mode is still
// recorded but the reply only asks for a topic.
func (t *Tracker) SetLearningMode(mode string) string {
	m, err := ParseMode(mode)
	if err != nil {
		t.logger.With(map[string]any{"mode": mode}).Info("invalid mode requested")
		return fmt.Sprintf("Invalid mode %q. Choose one of: %s.", mode, joinModes())
	}

	t.state.Mode = m
	t.logger.With(map[string]any{"mode": strings.ToUpper(string(m))}).Info("switching mode")

	if t.state.CurrentTopic == nil {
		return fmt.Sprintf("Switched to %s mode. Please select a topic first using select_topic.", m)
	}

	t.applyVoice(m)

	topic := t.state.CurrentTopic
	var instruction string
	switch m {
	case ModeLearn:
		instruction = "Mode: LEARN. Explain: " + topic.Summary
	case ModeQuiz:
		instruction = "Mode: QUIZ. Ask this question: " + topic.SampleQuestion
	case ModeTeachBack:
		instruction = "Mode: TEACH_BACK. Ask the user to explain the concept to you as if YOU are the beginner."
	}
	return fmt.Sprintf("Switched to %s mode. %s", m, instruction)
}

// EvaluateTeaching hands the learner's explanation back to the model for
// critique. Nothing is recorded.
func (t *Tracker) EvaluateTeaching(explanation string) string {
	t.logger.With(map[string]any{"explanation": explanation}).Info("evaluating explanation")
	return "Analyze the user's explanation. Give them feedback on accuracy and clarity, and correct any mistakes."
}

func (t *Tracker) applyVoice(m Mode) {
	if t.voice == nil {
		return
	}
	opts, ok := t.voices[m]
	if !ok {
		return
	}
	if err := t.voice.UpdateOptions(opts); err != nil {
		t.logger.With(map[string]any{"voice": opts.Voice, "error": err}).Warn("failed to switch voice")
	}
}

func joinModes() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
