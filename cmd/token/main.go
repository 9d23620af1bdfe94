// Command token prints a LiveKit room token for meeting a voicecoach agent.
package main

import (
	"fmt"
	"os"
	"time"

	"voicecoach/agent"
	"voicecoach/config"
	"voicecoach/livekit"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		room       string
		identity   string
		name       string
		persona    string
		ttl        time.Duration
	)
	pflag.StringVarP(&configPath, "config", "c", "", "JSON or YAML settings file (optional)")
	pflag.StringVarP(&room, "room", "r", "", "room to join (generated when empty)")
	pflag.StringVarP(&identity, "identity", "i", "", "participant identity (generated when empty)")
	pflag.StringVarP(&name, "name", "n", "", "participant display name")
	pflag.StringVarP(&persona, "persona", "p", "", "tutor or wellness (defaults to AGENT_PERSONA)")
	pflag.DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to LIVEKIT_TOKEN_TTL)")
	pflag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if persona == "" {
		persona = cfg.Persona
	}
	p, err := agent.ParsePersona(persona)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if ttl == 0 {
		ttl = cfg.LiveKit.TokenTTL
	}

	token, err := livekit.NewToken(livekit.TokenRequest{
		APIKey:    cfg.LiveKit.APIKey,
		APISecret: cfg.LiveKit.APISecret,
		Room:      room,
		Identity:  identity,
		Name:      name,
		TTL:       ttl,
		AgentName: cfg.LiveKit.AgentName,
		Persona:   p,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.LiveKit.URL != "" {
		fmt.Fprintf(os.Stderr, "server: %s\n", cfg.LiveKit.URL)
	}
	fmt.Println(token)
}
