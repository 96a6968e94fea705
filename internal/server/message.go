package server

import (
	"encoding/json"
	"time"

	"github.com/lox/airhockey/internal/game"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Host to server
	MessageTypePointerDown MessageType = "pointer_down"
	MessageTypePointerMove MessageType = "pointer_move"
	MessageTypePointerUp   MessageType = "pointer_up"
	MessageTypeReset       MessageType = "reset"

	// Server to host
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeGoal     MessageType = "goal"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = dataBytes
	}

	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// PointerData carries a pointer event already translated to court
// coordinates. X and Y are ignored for pointer_up.
type PointerData struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// GoalData is sent to every host when a goal is scored
type GoalData struct {
	Scorer string `json:"scorer"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
	Frame  uint64 `json:"frame"`
}

// ErrorData describes a rejected host message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GoalDataFromEvent converts a match event to its wire form
func GoalDataFromEvent(e game.GoalEvent) GoalData {
	return GoalData{
		Scorer: e.Scorer.String(),
		Score1: e.Score1,
		Score2: e.Score2,
		Frame:  e.Frame(),
	}
}
