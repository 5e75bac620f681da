package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeMemoCreated MessageType = "memo_created"
	TypeCaseUpdated MessageType = "case_updated"
	TypePing        MessageType = "ping"
	TypePong        MessageType = "pong"
	TypeError       MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
