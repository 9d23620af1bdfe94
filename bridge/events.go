package bridge

import (
	"encoding/json"
	"fmt"

	"voicecoach/core"
	"voicecoach/metrics"
	"voicecoach/voice"

	"github.com/bytedance/sonic"
)

// Event ids carried in WireEvent.ID.
const (
	EventSessionReady     = "session.ready"
	EventToolCall         = "tool.call"
	EventToolResult       = "tool.result"
	EventMetricsCollected = "metrics.collected"
	EventSessionEnd       = "session.end"
	EventTTSUpdateOptions = "tts.update_options"
	EventError            = "error"
)

// WireEvent is the JSON envelope used on the WebSocket connection.
//
//	{"id": "<event id>", "payload": { /* event-specific fields */ }}
type WireEvent struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// SessionReadyEvent is sent once per connection, before anything else.
type SessionReadyEvent struct {
	SessionID    string         `json:"session_id"`
	Persona      string         `json:"persona"`
	Instructions string         `json:"instructions"`
	Greeting     string         `json:"greeting"`
	Tools        []core.LLMTool `json:"tools"`
}

func (SessionReadyEvent) GetId() string { return EventSessionReady }

// ToolCallEvent asks the agent to run one tool.
type ToolCallEvent struct {
	CallID     string         `json:"call_id"`
	ToolID     string         `json:"tool_id"`
	Parameters map[string]any `json:"parameters"`
}

func (ToolCallEvent) GetId() string { return EventToolCall }

type ToolResultEvent struct {
	CallID string `json:"call_id"`
	ToolID string `json:"tool_id"`
	Output string `json:"output"`
}

func (ToolResultEvent) GetId() string { return EventToolResult }

// MetricsCollectedEvent relays a usage sample measured by the driver.
type MetricsCollectedEvent struct {
	metrics.Sample
}

func (MetricsCollectedEvent) GetId() string { return EventMetricsCollected }

type SessionEndEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (SessionEndEvent) GetId() string { return EventSessionEnd }

// TTSUpdateOptionsEvent tells the driver to switch its TTS voice.
type TTSUpdateOptionsEvent struct {
	voice.Options
}

func (TTSUpdateOptionsEvent) GetId() string { return EventTTSUpdateOptions }

type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) GetId() string { return EventError }

// Encode wraps ev in a WireEvent.
func Encode(ev core.IEvent) ([]byte, error) {
	payload, err := sonic.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("bridge: marshal %q payload: %w", ev.GetId(), err)
	}
	data, err := sonic.Marshal(WireEvent{ID: ev.GetId(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("bridge: marshal %q envelope: %w", ev.GetId(), err)
	}
	return data, nil
}

// inputEvents are the ids a driver may send, with a constructor for each.
var inputEvents = map[string]func() core.IEvent{
	EventToolCall:         func() core.IEvent { return &ToolCallEvent{} },
	EventMetricsCollected: func() core.IEvent { return &MetricsCollectedEvent{} },
	EventSessionEnd:       func() core.IEvent { return &SessionEndEvent{} },
}

// Decode parses an incoming frame into one of the input events.
func Decode(data []byte) (core.IEvent, error) {
	var wire WireEvent
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("bridge: unmarshal wire event: %w", err)
	}
	factory, ok := inputEvents[wire.ID]
	if !ok {
		return nil, fmt.Errorf("bridge: unsupported event id %q", wire.ID)
	}
	ev := factory()
	if len(wire.Payload) > 0 && string(wire.Payload) != "null" {
		if err := sonic.Unmarshal(wire.Payload, ev); err != nil {
			return nil, fmt.Errorf("bridge: unmarshal payload for %q: %w", wire.ID, err)
		}
	}
	return ev, nil
}
