// Package livekit mints room join tokens so a browser or phone client can
// meet an agent running the requested persona.
package livekit

import (
	"errors"
	"fmt"
	"time"

	"voicecoach/agent"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	lkproto "github.com/livekit/protocol/livekit"
)

var ErrMissingCredentials = errors.New("livekit: api key and secret are required")

// TokenRequest describes who is joining which room.
type TokenRequest struct {
	APIKey    string
	APISecret string

	Room     string
	Identity string
	Name     string
	TTL      time.Duration

	// AgentName, when set, dispatches that agent into the room with the
	// persona as job metadata.
	AgentName string
	Persona   agent.Persona
}

// ParticipantMetadata is attached to the token so the agent can pick the
// persona when the user joins.
type ParticipantMetadata struct {
	Persona string `json:"persona"`
}

// NewToken returns a signed JWT. Empty Room and Identity are generated.
func NewToken(req TokenRequest) (string, error) {
	if req.APIKey == "" || req.APISecret == "" {
		return "", ErrMissingCredentials
	}
	if req.Room == "" {
		req.Room = "voicecoach-" + uuid.NewString()[:8]
	}
	if req.Identity == "" {
		req.Identity = "user-" + uuid.NewString()[:8]
	}
	if req.TTL <= 0 {
		req.TTL = time.Hour
	}
	if req.Persona == "" {
		req.Persona = agent.PersonaTutor
	}

	meta, err := sonic.MarshalString(ParticipantMetadata{Persona: string(req.Persona)})
	if err != nil {
		return "", fmt.Errorf("livekit: marshal metadata: %w", err)
	}

	token := auth.NewAccessToken(req.APIKey, req.APISecret).
		SetIdentity(req.Identity).
		SetName(req.Name).
		SetMetadata(meta).
		SetValidFor(req.TTL).
		SetVideoGrant(&auth.VideoGrant{
			RoomJoin: true,
			Room:     req.Room,
		})

	if req.AgentName != "" {
		token.SetRoomConfig(&lkproto.RoomConfiguration{
			Agents: []*lkproto.RoomAgentDispatch{{
				AgentName: req.AgentName,
				Metadata:  meta,
			}},
		})
	}

	jwt, err := token.ToJWT()
	if err != nil {
		return "", fmt.Errorf("livekit: sign token: %w", err)
	}
	return jwt, nil
}
