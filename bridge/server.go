// Package bridge serves agent sessions to an external voice pipeline over a
// WebSocket. The pipeline owns audio, STT, LLM and TTS; the bridge owns the
// persona's instructions, tools and state.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"voicecoach/agent"
	"voicecoach/core"
	"voicecoach/metrics"

	"github.com/gorilla/websocket"
)

type Config struct {
	// Persona used when the client does not pass ?persona=.
	Persona agent.Persona
	Deps    agent.Dependencies

	// SessionLogDir enables per-session JSONL logs when non-empty.
	SessionLogDir string

	Collector  *metrics.UsageCollector
	Prometheus *metrics.Prometheus
}

type Server struct {
	cfg      Config
	logger   *core.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, logger *core.Logger) *Server {
	if logger == nil {
		logger = core.GetLogger()
	}
	if cfg.Persona == "" {
		cfg.Persona = agent.PersonaTutor
	}
	if cfg.Collector == nil {
		cfg.Collector = metrics.NewUsageCollector(cfg.Prometheus)
	}
	return &Server{
		cfg:    cfg,
		logger: logger.With(map[string]any{"component": "bridge"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Collector returns the usage aggregate shared by every session.
func (s *Server) Collector() *metrics.UsageCollector {
	return s.cfg.Collector
}

// Handler routes the WebSocket endpoint plus /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.cfg.Prometheus != nil {
		mux.Handle("/metrics", s.cfg.Prometheus.Handler())
	}
	return mux
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Infof("bridge listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	persona := s.cfg.Persona
	if q := r.URL.Query().Get("persona"); q != "" {
		p, err := agent.ParsePersona(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		persona = p
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess, err := newSession(s, conn, persona)
	if err != nil {
		s.logger.With(map[string]any{"error": err}).Error("failed to start session")
		_ = sendTo(conn, ErrorEvent{Message: err.Error()})
		return
	}
	defer sess.close()

	sess.run(r.Context())
}

func sendTo(conn *websocket.Conn, ev core.IEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
