package tutor

import (
	"fmt"
	"strings"

	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/tools"
)

// Tool ids exposed to the dialogue driver.
const (
	ToolSelectTopic      = "select_topic"
	ToolSetLearningMode  = "set_learning_mode"
	ToolEvaluateTeaching = "evaluate_teaching"
)

// Register adds the tutor tools, bound to t, to r.
func Register(r *tools.Registry, t *Tracker) {
	r.Register(core.LLMTool{
		ToolId:      ToolSelectTopic,
		Description: "Select a programming topic to study.",
		Parameters: []core.Parameter{
			{
				Name:        "topic_id",
				Description: "The ID of the topic (e.g., 'variables', 'loops', 'functions').",
				Required:    true,
				Example:     "loops",
				Type:        core.LLMParameterTypeString,
			},
		},
	}, func(call core.LLMToolCall) string {
		return t.SelectTopic(tools.StringParam(call, "topic_id"))
	})

	modes := make([]string, len(Modes))
	for i, m := range Modes {
		modes[i] = string(m)
	}
	r.Register(core.LLMTool{
		ToolId:      ToolSetLearningMode,
		Description: "Switch the interaction mode and update the agent's voice.",
		Parameters: []core.Parameter{
			{
				Name:        "mode",
				Description: "The mode to switch to: 'learn', 'quiz', or 'teach_back'.",
				Required:    true,
				Enum:        modes,
				Type:        core.LLMParameterTypeString,
			},
		},
	}, func(call core.LLMToolCall) string {
		return t.SetLearningMode(tools.StringParam(call, "mode"))
	})

	r.Register(core.LLMTool{
		ToolId:      ToolEvaluateTeaching,
		Description: "Evaluate the user's explanation in teach-back mode.",
		Parameters: []core.Parameter{
			{
				Name:        "user_explanation",
				Description: "The explanation given by the user.",
				Required:    true,
				Type:        core.LLMParameterTypeString,
			},
		},
	}, func(call core.LLMToolCall) string {
		return t.EvaluateTeaching(tools.StringParam(call, "user_explanation"))
	})
}

// Instructions renders the tutor system prompt for the given catalog.
func Instructions(cat *catalog.Catalog) string {
	entries := make([]string, 0, cat.Len())
	for _, topic := range cat.Topics() {
		entries = append(entries, fmt.Sprintf("%s (%s)", topic.ID, topic.Title))
	}

	return fmt.Sprintf(`You are a Programming Tutor designed to help users master programming concepts.

AVAILABLE TOPICS: %s

YOU HAVE 3 MODES:
1. LEARN Mode (Voice: Matthew): You explain the concept clearly using the summary data.
2. QUIZ Mode (Voice: Alicia): You ask the user a specific question to test knowledge.
3. TEACH_BACK Mode (Voice: Ken): YOU pretend to be a student. Ask the user to explain the concept to you.

BEHAVIOR:
- Start by asking what topic they want to study, then call %s.
- Use the %s tool immediately when the user asks to learn, take a quiz, or teach.
- In 'teach_back' mode, listen to their explanation and then use %s to give feedback.

Be encouraging and supportive!`,
		strings.Join(entries, ", "), ToolSelectTopic, ToolSetLearningMode, ToolEvaluateTeaching)
}
