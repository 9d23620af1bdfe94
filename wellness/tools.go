package wellness

import (
	"fmt"
	"strings"

	"voicecoach/core"
	"voicecoach/sessionlog"
	"voicecoach/tools"
)

// Tool ids exposed to the dialogue driver.
const (
	ToolRecordMood       = "record_mood"
	ToolRecordEnergy     = "record_energy"
	ToolRecordObjectives = "record_objectives"
)

// FirstTimePriming is used when there is no usable history.
const FirstTimePriming = "This is the user's first check-in. Welcome them warmly and briefly explain that you will ask about their mood, their energy, and a few goals for today."

// Register adds the check-in tools, bound to t, to r.
func Register(r *tools.Registry, t *Tracker) {
	r.Register(core.LLMTool{
		ToolId:      ToolRecordMood,
		Description: "Record how the user says they are feeling today.",
		Parameters: []core.Parameter{
			{Name: "mood", Description: "The user's mood in their own words.", Required: true, Example: "tired but motivated", Type: core.LLMParameterTypeString},
		},
	}, func(call core.LLMToolCall) string {
		return t.RecordMood(tools.StringParam(call, "mood"))
	})

	r.Register(core.LLMTool{
		ToolId:      ToolRecordEnergy,
		Description: "Record the user's energy level today.",
		Parameters: []core.Parameter{
			{Name: "energy", Description: "The user's energy level, e.g. low, medium, high.", Required: true, Example: "low", Type: core.LLMParameterTypeString},
		},
	}, func(call core.LLMToolCall) string {
		return t.RecordEnergy(tools.StringParam(call, "energy"))
	})

	r.Register(core.LLMTool{
		ToolId:      ToolRecordObjectives,
		Description: "Record one to three objectives the user wants to accomplish today.",
		Parameters: []core.Parameter{
			{Name: "objectives", Description: "Comma-separated list of objectives.", Required: true, Example: "finish report, walk", Type: core.LLMParameterTypeString},
		},
	}, func(call core.LLMToolCall) string {
		return t.RecordObjectives(tools.StringParam(call, "objectives"))
	})
}

// Priming summarises the most recent saved check-in for the system prompt.
// Any problem reading the log falls back to FirstTimePriming.
func Priming(store *sessionlog.Store, logger *core.Logger) string {
	if logger == nil {
		logger = core.GetLogger()
	}
	if store == nil {
		return FirstTimePriming
	}

	last, ok, err := store.Latest()
	if err != nil {
		logger.With(map[string]any{"component": "wellness", "error": err}).Info("no previous check-ins available")
		return FirstTimePriming
	}
	if !ok {
		return FirstTimePriming
	}
	return PrimingFor(last)
}

// PrimingFor renders the priming text for a previous session.
func PrimingFor(last sessionlog.Entry) string {
	objectives := "none recorded"
	if len(last.Objectives) > 0 {
		objectives = strings.Join(last.Objectives, ", ")
	}
	return fmt.Sprintf(
		"Last time, the user said they were feeling %s with %s energy, and their objectives were: %s. Briefly reference this and ask how it went.",
		last.Mood, last.Energy, objectives,
	)
}

// Instructions renders the wellness system prompt around a priming string.
func Instructions(priming string) string {
	return fmt.Sprintf(`You are a supportive daily wellness companion doing a short voice check-in.

CONTEXT FROM PREVIOUS SESSIONS:
%s

FLOW:
1. Ask how the user is feeling today and call %s with their answer.
2. Ask about their energy level and call %s.
3. Ask for one to three simple objectives for today and call %s with them as a comma-separated list.
4. When the tool returns a recap, read it back briefly and confirm.

Keep it warm, short and non-clinical. Do not diagnose or give medical advice; if the user mentions a crisis, encourage them to reach out to a trusted person or local emergency services.`,
		priming, ToolRecordMood, ToolRecordEnergy, ToolRecordObjectives)
}
