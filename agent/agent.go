// Package agent assembles a persona's instructions, tools and per-session
// state into something a dialogue driver can run.
package agent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/sessionlog"
	"voicecoach/tools"
	"voicecoach/tutor"
	"voicecoach/voice"
	"voicecoach/wellness"
)

var ErrUnknownPersona = errors.New("unknown persona")

type Persona string

const (
	PersonaTutor    Persona = "tutor"
	PersonaWellness Persona = "wellness"
)

// ParsePersona accepts a persona name in any case.
func ParsePersona(s string) (Persona, error) {
	switch p := Persona(strings.ToLower(strings.TrimSpace(s))); p {
	case PersonaTutor, PersonaWellness:
		return p, nil
	}
	return "", fmt.Errorf("agent: %q: %w", s, ErrUnknownPersona)
}

// Dependencies are the shared, process-wide collaborators. Voice is per
// session when the driver can switch voices.
type Dependencies struct {
	Catalog *catalog.Catalog
	Store   *sessionlog.Store
	Voice   voice.Controller
	Logger  *core.Logger
	Now     func() time.Time
}

// Agent is one session's worth of persona state.
type Agent struct {
	Persona      Persona
	Instructions string
	Tools        *tools.Registry

	// Exactly one of these is set, matching Persona.
	Tutor    *tutor.Tracker
	Wellness *wellness.Tracker
}

func New(persona Persona, deps Dependencies) (*Agent, error) {
	logger := deps.Logger
	if logger == nil {
		logger = core.GetLogger()
	}
	logger = logger.With(map[string]any{"persona": string(persona)})

	a := &Agent{
		Persona: persona,
		Tools:   tools.NewRegistry(logger),
	}

	switch persona {
	case PersonaTutor:
		cat := deps.Catalog
		if cat == nil {
			cat = catalog.Default()
		}
		a.Tutor = tutor.NewTracker(cat, deps.Voice, logger)
		tutor.Register(a.Tools, a.Tutor)
		a.Instructions = tutor.Instructions(cat)

	case PersonaWellness:
		var opts []wellness.Option
		if deps.Now != nil {
			opts = append(opts, wellness.WithClock(deps.Now))
		}
		var saver wellness.Saver
		if deps.Store != nil {
			saver = deps.Store
		}
		a.Wellness = wellness.NewTracker(saver, logger, opts...)
		wellness.Register(a.Tools, a.Wellness)
		a.Instructions = wellness.Instructions(wellness.Priming(deps.Store, logger))

	default:
		return nil, fmt.Errorf("agent: %q: %w", persona, ErrUnknownPersona)
	}

	logger.With(map[string]any{"tools": len(a.Tools.Tools())}).Info("agent ready")
	return a, nil
}

// Context returns a fresh LLM context seeded with the system instructions and
// the tool list.
func (a *Agent) Context() *core.LLMContext {
	ctx := &core.LLMContext{Tools: a.Tools.Tools()}
	ctx.AddSystemMessage(a.Instructions)
	return ctx
}

// Greeting is the prompt the driver sends so the agent speaks first.
func (a *Agent) Greeting() string {
	if a.Persona == PersonaWellness {
		return "Greet the user and start today's check-in."
	}
	return "Greet the user, introduce yourself as their coding tutor and ask which topic they want to study."
}
