package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voicecoach/agent"
	"voicecoach/core"
	"voicecoach/metrics"
	"voicecoach/voice"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// session is one connection's agent. Incoming events are handled in order on
// the read goroutine; writes are serialised by writeMu.
type session struct {
	id      string
	server  *Server
	conn    *websocket.Conn
	writeMu sync.Mutex

	agent     *agent.Agent
	logger    *core.Logger
	logWriter *core.SessionLogWriter
}

func newSession(s *Server, conn *websocket.Conn, persona agent.Persona) (*session, error) {
	sess := &session{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
	}

	logger := s.logger
	if s.cfg.SessionLogDir != "" {
		w, err := core.NewSessionLogWriter(s.cfg.SessionLogDir, sess.id, string(persona))
		if err != nil {
			s.logger.With(map[string]any{"error": err}).Warn("session log disabled")
		} else {
			sess.logWriter = w
			logger = core.NewSessionLogger(logger, w)
		}
	}
	sess.logger = logger.With(map[string]any{"session_id": sess.id})

	deps := s.cfg.Deps
	deps.Logger = sess.logger
	deps.Voice = voice.ControllerFunc(sess.updateVoice)

	a, err := agent.New(persona, deps)
	if err != nil {
		sess.close()
		return nil, err
	}
	a.Tools.Observe(func(toolID string, elapsed time.Duration) {
		s.cfg.Collector.Collect(metrics.Sample{
			Type:       metrics.TypeTool,
			ToolID:     toolID,
			DurationMS: float64(elapsed.Microseconds()) / 1000,
		})
	})
	sess.agent = a

	if s.cfg.Prometheus != nil {
		s.cfg.Prometheus.SessionStarted(string(persona))
	}
	return sess, nil
}

func (s *session) run(ctx context.Context) {
	s.logger.Infof("client connected (%s)", s.conn.RemoteAddr())

	err := s.send(SessionReadyEvent{
		SessionID:    s.id,
		Persona:      string(s.agent.Persona),
		Instructions: s.agent.Instructions,
		Greeting:     s.agent.Greeting(),
		Tools:        s.agent.Tools.Tools(),
	})
	if err != nil {
		s.logger.Errorf("send session.ready: %v", err)
		return
	}

	for ctx.Err() == nil {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Debugf("read: %v", err)
			return
		}

		ev, err := Decode(data)
		if err != nil {
			s.logger.With(map[string]any{"error": err}).Warn("rejected event")
			_ = s.send(ErrorEvent{Message: err.Error()})
			continue
		}
		if done := s.handle(ev); done {
			return
		}
	}
}

// handle processes one event and reports whether the session should end.
func (s *session) handle(ev core.IEvent) bool {
	switch e := ev.(type) {
	case *ToolCallEvent:
		call := core.NewToolCall(e.CallID, e.ToolID, e.Parameters)
		out := s.agent.Tools.Call(call)
		if err := s.send(ToolResultEvent{CallID: e.CallID, ToolID: e.ToolID, Output: out}); err != nil {
			s.logger.Errorf("send tool.result: %v", err)
			return true
		}

	case *MetricsCollectedEvent:
		if err := e.Validate(); err != nil {
			_ = s.send(ErrorEvent{Message: err.Error()})
			return false
		}
		metrics.Log(s.logger, e.Sample)
		s.server.cfg.Collector.Collect(e.Sample)

	case *SessionEndEvent:
		s.logger.With(map[string]any{"reason": e.Reason}).Info("session ended by driver")
		return true

	default:
		_ = s.send(ErrorEvent{Message: fmt.Sprintf("unhandled event %q", ev.GetId())})
	}
	return false
}

func (s *session) updateVoice(opts voice.Options) error {
	return s.send(TTSUpdateOptionsEvent{Options: opts})
}

func (s *session) send(ev core.IEvent) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return sendTo(s.conn, ev)
}

func (s *session) close() {
	if s.agent != nil && s.agent.Wellness != nil && !s.agent.Wellness.CheckIn().Complete() {
		s.logger.Info("session closed before the check-in was complete")
	}
	s.logger.Info("session closed")
	if s.logWriter != nil {
		s.logWriter.Close()
	}
}
