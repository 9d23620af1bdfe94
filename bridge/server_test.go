package bridge

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicecoach/agent"
	"voicecoach/catalog"
	"voicecoach/core"
	"voicecoach/metrics"
	"voicecoach/sessionlog"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server *Server
	url    string
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	if cfg.Deps.Catalog == nil {
		cfg.Deps.Catalog = catalog.Default()
	}
	srv := NewServer(cfg, core.NewNopLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &harness{server: srv, url: "ws" + strings.TrimPrefix(ts.URL, "http")}
}

func (h *harness) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.url+"/"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, ev core.IEvent) {
	t.Helper()
	data, err := Encode(ev)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func recv(t *testing.T, conn *websocket.Conn) WireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var wire WireEvent
	require.NoError(t, sonic.Unmarshal(data, &wire))
	return wire
}

func recvInto[T any](t *testing.T, conn *websocket.Conn, id string) T {
	t.Helper()
	wire := recv(t, conn)
	require.Equal(t, id, wire.ID, string(wire.Payload))
	var out T
	require.NoError(t, sonic.Unmarshal(wire.Payload, &out))
	return out
}

func TestTutorSessionOverWebSocket(t *testing.T) {
	h := newHarness(t, Config{Persona: agent.PersonaTutor})
	conn := h.dial(t, "")

	ready := recvInto[SessionReadyEvent](t, conn, EventSessionReady)
	require.NotEmpty(t, ready.SessionID)
	require.Equal(t, "tutor", ready.Persona)
	require.Contains(t, ready.Instructions, "loops (Loops)")
	require.Len(t, ready.Tools, 3)

	send(t, conn, ToolCallEvent{CallID: "c1", ToolID: "select_topic", Parameters: map[string]any{"topic_id": "loops"}})
	res := recvInto[ToolResultEvent](t, conn, EventToolResult)
	require.Equal(t, "c1", res.CallID)
	require.Contains(t, res.Output, "Topic set to Loops.")

	send(t, conn, ToolCallEvent{CallID: "c2", ToolID: "set_learning_mode", Parameters: map[string]any{"mode": "quiz"}})
	tts := recvInto[TTSUpdateOptionsEvent](t, conn, EventTTSUpdateOptions)
	require.Equal(t, "en-US-alicia", tts.Voice)
	require.Equal(t, "Conversation", tts.Style)
	res = recvInto[ToolResultEvent](t, conn, EventToolResult)
	require.Contains(t, res.Output, "Mode: QUIZ.")

	send(t, conn, ToolCallEvent{CallID: "c3", ToolID: "fly"})
	res = recvInto[ToolResultEvent](t, conn, EventToolResult)
	require.Contains(t, res.Output, `Unknown tool "fly"`)
}

func TestWellnessSessionPersistsCheckIn(t *testing.T) {
	dir := t.TempDir()
	store := sessionlog.NewStore(filepath.Join(dir, "wellness_log.json"), core.NewNopLogger())
	h := newHarness(t, Config{Persona: agent.PersonaTutor, Deps: agent.Dependencies{Store: store}})
	conn := h.dial(t, "?persona=wellness")

	ready := recvInto[SessionReadyEvent](t, conn, EventSessionReady)
	require.Equal(t, "wellness", ready.Persona)

	calls := []ToolCallEvent{
		{CallID: "1", ToolID: "record_mood", Parameters: map[string]any{"mood": "tired but motivated"}},
		{CallID: "2", ToolID: "record_energy", Parameters: map[string]any{"energy": "low"}},
		{CallID: "3", ToolID: "record_objectives", Parameters: map[string]any{"objectives": "finish report, walk"}},
	}
	var last ToolResultEvent
	for _, c := range calls {
		send(t, conn, c)
		last = recvInto[ToolResultEvent](t, conn, EventToolResult)
	}
	require.True(t, strings.HasPrefix(last.Output, "Check-in saved."))

	entry, ok, err := store.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "User is feeling tired but motivated with low energy. Goals: finish report, walk", entry.Summary)
}

func TestMetricsAndErrors(t *testing.T) {
	prom := metrics.NewPrometheus("bridge_test")
	h := newHarness(t, Config{Prometheus: prom})
	conn := h.dial(t, "")
	recv(t, conn)

	send(t, conn, MetricsCollectedEvent{Sample: metrics.Sample{Type: metrics.TypeLLM, Model: "m", PromptTokens: 12, CompletionTokens: 3}})
	send(t, conn, MetricsCollectedEvent{Sample: metrics.Sample{Type: "vision"}})
	errEv := recvInto[ErrorEvent](t, conn, EventError)
	require.Contains(t, errEv.Message, "unknown sample type")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"agent.speak","payload":{}}`)))
	errEv = recvInto[ErrorEvent](t, conn, EventError)
	require.Contains(t, errEv.Message, "agent.speak")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	recvInto[ErrorEvent](t, conn, EventError)

	require.Equal(t, 12, h.server.Collector().Summary().LLMPromptTokens)
}

func TestSessionEndClosesConnectionAndLog(t *testing.T) {
	logDir := t.TempDir()
	h := newHarness(t, Config{SessionLogDir: logDir})
	conn := h.dial(t, "")
	ready := recvInto[SessionReadyEvent](t, conn, EventSessionReady)

	send(t, conn, SessionEndEvent{Reason: "user hung up"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	logPath := filepath.Join(logDir, ready.SessionID+".jsonl")
	require.Eventually(t, func() bool {
		_, statErr := os.Stat(filepath.Join(logDir, ready.SessionID+".active"))
		return os.IsNotExist(statErr)
	}, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"session_id":"`+ready.SessionID+`"`)
	require.Contains(t, string(data), "session ended by driver")
}

func TestUnknownPersonaRejected(t *testing.T) {
	h := newHarness(t, Config{})
	_, resp, err := websocket.DefaultDialer.Dial(h.url+"/?persona=pirate", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 400, resp.StatusCode)
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"id":"tool.call","payload":{"call_id":"x","tool_id":"record_mood","parameters":{"mood":"ok"}}}`))
	require.NoError(t, err)
	call, ok := ev.(*ToolCallEvent)
	require.True(t, ok)
	require.Equal(t, "record_mood", call.ToolID)
	require.Equal(t, "ok", call.Parameters["mood"])

	ev, err = Decode([]byte(`{"id":"session.end"}`))
	require.NoError(t, err)
	require.IsType(t, &SessionEndEvent{}, ev)

	_, err = Decode([]byte(`{"id":"tool.result","payload":{}}`))
	require.Error(t, err)
}
