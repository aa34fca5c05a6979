package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

const (
	actionGameState = "game:state"
	actionError     = "error"
)

// Message is the envelope of every frame sent to a watcher.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

func newMessage(action string, payload Payload) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{Action: action, Payload: raw}, nil
}
