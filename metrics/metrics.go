// Package metrics logs per-turn usage samples reported by the dialogue driver
// and aggregates them for a shutdown summary and a Prometheus endpoint.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"voicecoach/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Type string

const (
	TypeLLM  Type = "llm"
	TypeSTT  Type = "stt"
	TypeTTS  Type = "tts"
	TypeEOU  Type = "eou"
	TypeTool Type = "tool"
)

// Sample is one usage measurement. Fields that do not apply to Type are zero.
type Sample struct {
	Type             Type    `json:"type"`
	Model            string  `json:"model,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	AudioSeconds     float64 `json:"audio_seconds,omitempty"`
	CharactersCount  int     `json:"characters_count,omitempty"`
	DurationMS       float64 `json:"duration_ms,omitempty"`
	ToolID           string  `json:"tool_id,omitempty"`
}

func (s Sample) Validate() error {
	switch s.Type {
	case TypeLLM, TypeSTT, TypeTTS, TypeEOU, TypeTool:
		return nil
	}
	return fmt.Errorf("metrics: unknown sample type %q", s.Type)
}

// Log writes s as a single structured line.
func Log(logger *core.Logger, s Sample) {
	if logger == nil {
		logger = core.GetLogger()
	}
	attrs := map[string]any{"component": "metrics", "type": string(s.Type)}
	if s.Model != "" {
		attrs["model"] = s.Model
	}
	if s.ToolID != "" {
		attrs["tool_id"] = s.ToolID
	}
	switch s.Type {
	case TypeLLM:
		attrs["prompt_tokens"] = s.PromptTokens
		attrs["completion_tokens"] = s.CompletionTokens
	case TypeSTT:
		attrs["audio_seconds"] = s.AudioSeconds
	case TypeTTS:
		attrs["characters"] = s.CharactersCount
		attrs["audio_seconds"] = s.AudioSeconds
	}
	if s.DurationMS > 0 {
		attrs["duration_ms"] = s.DurationMS
	}
	logger.With(attrs).Debug("metrics collected")
}

// Summary is the running total across every collected sample.
type Summary struct {
	LLMPromptTokens     int     `json:"llm_prompt_tokens"`
	LLMCompletionTokens int     `json:"llm_completion_tokens"`
	STTAudioSeconds     float64 `json:"stt_audio_seconds"`
	TTSCharacters       int     `json:"tts_characters"`
	TTSAudioSeconds     float64 `json:"tts_audio_seconds"`
	ToolCalls           int     `json:"tool_calls"`
}

// UsageCollector aggregates samples. It is safe for concurrent use.
type UsageCollector struct {
	mu      sync.Mutex
	summary Summary
	prom    *Prometheus
}

// NewUsageCollector returns a collector that also feeds prom when non-nil.
func NewUsageCollector(prom *Prometheus) *UsageCollector {
	return &UsageCollector{prom: prom}
}

func (c *UsageCollector) Collect(s Sample) {
	c.mu.Lock()
	switch s.Type {
	case TypeLLM:
		c.summary.LLMPromptTokens += s.PromptTokens
		c.summary.LLMCompletionTokens += s.CompletionTokens
	case TypeSTT:
		c.summary.STTAudioSeconds += s.AudioSeconds
	case TypeTTS:
		c.summary.TTSCharacters += s.CharactersCount
		c.summary.TTSAudioSeconds += s.AudioSeconds
	case TypeTool:
		c.summary.ToolCalls++
	}
	c.mu.Unlock()

	if c.prom != nil {
		c.prom.Observe(s)
	}
}

func (c *UsageCollector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// LogSummary writes the totals, typically at shutdown.
func (c *UsageCollector) LogSummary(logger *core.Logger) {
	if logger == nil {
		logger = core.GetLogger()
	}
	s := c.Summary()
	logger.With(map[string]any{
		"component":             "metrics",
		"llm_prompt_tokens":     s.LLMPromptTokens,
		"llm_completion_tokens": s.LLMCompletionTokens,
		"stt_audio_seconds":     s.STTAudioSeconds,
		"tts_characters":        s.TTSCharacters,
		"tts_audio_seconds":     s.TTSAudioSeconds,
		"tool_calls":            s.ToolCalls,
	}).Info("usage summary")
}

// Prometheus holds the exported counters.
type Prometheus struct {
	registry *prometheus.Registry

	Tokens       *prometheus.CounterVec
	AudioSeconds *prometheus.CounterVec
	Characters   *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	Sessions     *prometheus.CounterVec
}

func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "voicecoach"
	}
	registry := prometheus.NewRegistry()

	tokens := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "llm_tokens_total", Help: "LLM tokens processed"},
		[]string{"model", "direction"},
	)
	audio := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "audio_seconds_total", Help: "Seconds of audio transcribed or synthesized"},
		[]string{"type"},
	)
	chars := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "tts_characters_total", Help: "Characters sent to speech synthesis"},
		[]string{"model"},
	)
	toolCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "tool_calls_total", Help: "Tool invocations"},
		[]string{"tool_id"},
	)
	latency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Per-stage latency reported by the driver",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"type"},
	)
	sessions := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "sessions_total", Help: "Agent sessions started"},
		[]string{"persona"},
	)

	registry.MustRegister(tokens, audio, chars, toolCalls, latency, sessions)

	return &Prometheus{
		registry:     registry,
		Tokens:       tokens,
		AudioSeconds: audio,
		Characters:   chars,
		ToolCalls:    toolCalls,
		Latency:      latency,
		Sessions:     sessions,
	}
}

func (p *Prometheus) Observe(s Sample) {
	switch s.Type {
	case TypeLLM:
		if s.PromptTokens > 0 {
			p.Tokens.WithLabelValues(s.Model, "prompt").Add(float64(s.PromptTokens))
		}
		if s.CompletionTokens > 0 {
			p.Tokens.WithLabelValues(s.Model, "completion").Add(float64(s.CompletionTokens))
		}
	case TypeSTT:
		p.AudioSeconds.WithLabelValues(string(s.Type)).Add(s.AudioSeconds)
	case TypeTTS:
		p.AudioSeconds.WithLabelValues(string(s.Type)).Add(s.AudioSeconds)
		p.Characters.WithLabelValues(s.Model).Add(float64(s.CharactersCount))
	case TypeTool:
		p.ToolCalls.WithLabelValues(s.ToolID).Inc()
	}
	if s.DurationMS > 0 {
		p.Latency.WithLabelValues(string(s.Type)).Observe(s.DurationMS / 1000)
	}
}

// SessionStarted counts a new agent session.
func (p *Prometheus) SessionStarted(persona string) {
	p.Sessions.WithLabelValues(persona).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
