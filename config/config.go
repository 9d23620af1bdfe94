// Package config loads process settings from an optional JSON or YAML file,
// the environment and env-default tags, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"voicecoach/agent"
	"voicecoach/core"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Persona  string         `json:"persona"  yaml:"persona"  env:"AGENT_PERSONA" env-default:"tutor"`
	Log      LogConfig      `json:"log"      yaml:"log"`
	Catalog  CatalogConfig  `json:"catalog"  yaml:"catalog"`
	Wellness WellnessConfig `json:"wellness" yaml:"wellness"`
	OpenAI   OpenAIConfig   `json:"openai"   yaml:"openai"`
	Bridge   BridgeConfig   `json:"bridge"   yaml:"bridge"`
	LiveKit  LiveKitConfig  `json:"livekit"  yaml:"livekit"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	// SessionDir enables one JSONL file per session when set.
	SessionDir string `json:"session_dir" yaml:"session_dir" env:"SESSION_LOG_DIR"`
}

type CatalogConfig struct {
	Path string `json:"path" yaml:"path" env:"TUTOR_CONTENT_PATH" env-default:"shared-data/day4_tutor_content.json"`
}

type WellnessConfig struct {
	LogPath string `json:"log_path" yaml:"log_path" env:"WELLNESS_LOG_PATH" env-default:"wellness_log.json"`
}

type OpenAIConfig struct {
	APIKey        string  `json:"api_key"         yaml:"api_key"         env:"OPENAI_API_KEY"`
	BaseURL       string  `json:"base_url"        yaml:"base_url"        env:"OPENAI_BASE_URL"`
	Model         string  `json:"model"           yaml:"model"           env:"OPENAI_MODEL"           env-default:"gpt-4o-mini"`
	MaxTokens     int     `json:"max_tokens"      yaml:"max_tokens"      env:"OPENAI_MAX_TOKENS"      env-default:"512"`
	Temperature   float32 `json:"temperature"     yaml:"temperature"     env:"OPENAI_TEMPERATURE"     env-default:"0.7"`
	MaxToolRounds int     `json:"max_tool_rounds" yaml:"max_tool_rounds" env:"OPENAI_MAX_TOOL_ROUNDS" env-default:"4"`
}

type BridgeConfig struct {
	Addr             string `json:"addr"              yaml:"addr"              env:"BRIDGE_ADDR"              env-default:":19304"`
	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace" env:"METRICS_NAMESPACE" env-default:"voicecoach"`
}

type LiveKitConfig struct {
	URL       string        `json:"url"        yaml:"url"        env:"LIVEKIT_URL"`
	APIKey    string        `json:"api_key"    yaml:"api_key"    env:"LIVEKIT_API_KEY"`
	APISecret string        `json:"api_secret" yaml:"api_secret" env:"LIVEKIT_API_SECRET"`
	AgentName string        `json:"agent_name" yaml:"agent_name" env:"LIVEKIT_AGENT_NAME"`
	TokenTTL  time.Duration `json:"token_ttl"  yaml:"token_ttl"  env:"LIVEKIT_TOKEN_TTL"  env-default:"1h"`
}

// Load reads path when it is non-empty, otherwise the environment alone.
// A path that does not exist is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := agent.ParsePersona(c.Persona); err != nil {
		return err
	}
	if !core.ValidLevel(c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.OpenAI.MaxToolRounds < 1 {
		return errors.New("openai.max_tool_rounds must be at least 1")
	}
	return nil
}

// PersonaValue returns the validated persona.
func (c *Config) PersonaValue() agent.Persona {
	p, _ := agent.ParsePersona(c.Persona)
	return p
}

// LiveKitEnabled reports whether room tokens can be minted.
func (c *Config) LiveKitEnabled() bool {
	return c.LiveKit.APIKey != "" && c.LiveKit.APISecret != ""
}

// Usage renders the environment variables understood by Load.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
