package proto

import (
	"encoding/json"
	"errors"
)

// ErrMissingMessage is returned when an inbound envelope has no message field.
var ErrMissingMessage = errors.New("message field is required")

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Message *string `json:"message"`
}

// Outbound is the envelope for relayed messages sent to the client.
type Outbound struct {
	Message string `json:"message"`
}

// DecodeInbound parses a client frame and returns the chat text it carries.
func DecodeInbound(data []byte) (string, error) {
	var inbound Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		return "", err
	}
	if inbound.Message == nil {
		return "", ErrMissingMessage
	}
	return *inbound.Message, nil
}
