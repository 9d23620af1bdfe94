// Package wellness runs a short daily check-in: mood, energy and a few
// objectives, saved to the session log once all three are known.
package wellness

import (
	"fmt"
	"strings"
	"time"

	"voicecoach/core"
	"voicecoach/sessionlog"
)

// CheckIn is the in-progress record for one session.
type CheckIn struct {
	Mood       string
	Energy     string
	Objectives []string
	Summary    string
	Timestamp  string
}

// Complete reports whether the completion fields have been stamped.
func (c CheckIn) Complete() bool {
	return c.Summary != "" && c.Timestamp != ""
}

// Entry snapshots c in its on-disk form.
func (c CheckIn) Entry() sessionlog.Entry {
	objectives := make([]string, len(c.Objectives))
	copy(objectives, c.Objectives)
	return sessionlog.Entry{
		Mood:       c.Mood,
		Energy:     c.Energy,
		Objectives: objectives,
		Summary:    c.Summary,
		Timestamp:  c.Timestamp,
	}
}

// Saver persists a finalized check-in. *sessionlog.Store satisfies it.
type Saver interface {
	Append(entry sessionlog.Entry) error
}

// Tracker collects one check-in. It is owned by a single session and driven
// one tool call at a time.
type Tracker struct {
	checkIn CheckIn
	saver   Saver
	now     func() time.Time
	logger  *core.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(saver Saver, logger *core.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = core.GetLogger()
	}
	t := &Tracker{
		saver:  saver,
		now:    time.Now,
		logger: logger.With(map[string]any{"component": "wellness"}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckIn returns a copy of the record.
func (t *Tracker) CheckIn() CheckIn {
	c := t.checkIn
	c.Objectives = append([]string(nil), t.checkIn.Objectives...)
	return c
}

func (t *Tracker) RecordMood(mood string) string {
	t.checkIn.Mood = strings.TrimSpace(mood)
	t.logger.With(map[string]any{"mood": t.checkIn.Mood}).Info("mood recorded")
	if recap, ok := t.checkCompletion(); ok {
		return recap
	}
	switch {
	case t.checkIn.Mood == "":
		return "No mood was heard. Ask the user again how they are feeling."
	case t.checkIn.Complete():
		return fmt.Sprintf("Updated mood to %s for this conversation. Today's check-in was already saved.", t.checkIn.Mood)
	}
	return fmt.Sprintf("Noted that the user is feeling %s. %s", t.checkIn.Mood, t.nextPrompt())
}

func (t *Tracker) RecordEnergy(energy string) string {
	t.checkIn.Energy = strings.TrimSpace(energy)
	t.logger.With(map[string]any{"energy": t.checkIn.Energy}).Info("energy recorded")
	if recap, ok := t.checkCompletion(); ok {
		return recap
	}
	switch {
	case t.checkIn.Energy == "":
		return "No energy level was heard. Ask the user again how their energy is."
	case t.checkIn.Complete():
		return fmt.Sprintf("Updated energy to %s for this conversation. Today's check-in was already saved.", t.checkIn.Energy)
	}
	return fmt.Sprintf("Noted %s energy. %s", t.checkIn.Energy, t.nextPrompt())
}

// RecordObjectives splits a comma-separated list; blank items are dropped.
func (t *Tracker) RecordObjectives(objectives string) string {
	t.checkIn.Objectives = SplitObjectives(objectives)
	t.logger.With(map[string]any{"objectives": t.checkIn.Objectives}).Info("objectives recorded")
	if recap, ok := t.checkCompletion(); ok {
		return recap
	}
	switch {
	case len(t.checkIn.Objectives) == 0:
		return "No objectives were heard. Ask the user again for one to three things they want to get done."
	case t.checkIn.Complete():
		return "Updated objectives for this conversation. Today's check-in was already saved."
	}
	return "Objectives noted. " + t.nextPrompt()
}

// SplitObjectives splits on commas, trims, and drops empty items.
func SplitObjectives(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Summarize builds the one-line summary stored with the check-in.
func Summarize(mood, energy string, objectives []string) string {
	return fmt.Sprintf("User is feeling %s with %s energy. Goals: %s", mood, energy, strings.Join(objectives, ", "))
}

// checkCompletion finalizes the check-in the first time every field is
// filled. Once complete, later edits stay in memory and are not saved again.
func (t *Tracker) checkCompletion() (string, bool) {
	c := &t.checkIn
	if c.Mood == "" || c.Energy == "" || len(c.Objectives) == 0 {
		return "", false
	}
	if c.Complete() {
		t.logger.Info("check-in already saved, keeping edit in memory only")
		return "", false
	}

	c.Timestamp = t.now().UTC().Format(time.RFC3339)
	c.Summary = Summarize(c.Mood, c.Energy, c.Objectives)
	t.logger.With(map[string]any{"summary": c.Summary}).Info("check-in complete")

	t.save()
	return t.recap(), true
}

func (t *Tracker) save() {
	if t.saver == nil {
		return
	}
	if err := t.saver.Append(t.checkIn.Entry()); err != nil {
		t.logger.With(map[string]any{"error": err}).Error("failed to save check-in")
	}
}

func (t *Tracker) recap() string {
	c := t.checkIn
	var b strings.Builder
	b.WriteString("Check-in saved. Recap for the user:\n")
	fmt.Fprintf(&b, "- Mood: %s\n", c.Mood)
	fmt.Fprintf(&b, "- Energy: %s\n", c.Energy)
	b.WriteString("- Objectives:\n")
	for i, o := range c.Objectives {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, o)
	}
	b.WriteString("Read this recap back briefly and ask: Does this sound right?")
	return b.String()
}

// nextPrompt steers the model toward the first field still missing.
func (t *Tracker) nextPrompt() string {
	switch {
	case t.checkIn.Mood == "":
		return "Now ask how the user is feeling."
	case t.checkIn.Energy == "":
		return "Now ask about the user's energy level."
	default:
		return "Now ask for one to three objectives for today."
	}
}
