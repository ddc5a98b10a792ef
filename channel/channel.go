// Package channel carries agent events from the host to the client and user
// turns back to the host.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/chat/model"
)

// Transport is a live connection to an agent host.
type Transport interface {
	Type() chmodel.Type

	// Run reads frames and publishes them on the bus.
	// It blocks until ctx is done or the connection ends.
	Run(ctx context.Context) error

	// DispatchUserTurn sends one user turn to the host.
	DispatchUserTurn(ctx context.Context, text string, history []model.Message) error

	Close() error
}

const userTurnType = "UserTurn"

var ErrNotUserTurn = errors.New("frame is not a user turn")

// UserTurn is the payload sent to the host for every user message.
type UserTurn struct {
	Message string          `json:"message"`
	History []model.Message `json:"history"`
}

type userTurnFrame struct {
	Type    string   `json:"type"`
	Content UserTurn `json:"content"`
}

func EncodeUserTurn(text string, history []model.Message) ([]byte, error) {
	if history == nil {
		history = []model.Message{}
	}
	data, err := json.Marshal(userTurnFrame{
		Type:    userTurnType,
		Content: UserTurn{Message: text, History: history},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode user turn: %w", err)
	}
	return data, nil
}

func DecodeUserTurn(data []byte) (UserTurn, error) {
	var f userTurnFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return UserTurn{}, fmt.Errorf("failed to decode user turn: %w", err)
	}
	if f.Type != userTurnType {
		return UserTurn{}, ErrNotUserTurn
	}
	return f.Content, nil
}
