package core

import "errors"

var (
	// ErrRegistryClosed is returned by Join once the registry has been shut down.
	ErrRegistryClosed = errors.New("registry closed")
	// ErrAlreadyJoined is returned when a member tries to join a second room.
	ErrAlreadyJoined = errors.New("already joined another room")
	// ErrEmptyRoom is returned for an empty room name.
	ErrEmptyRoom = errors.New("room name is required")

	// ErrHandshakeRejected wraps any failure to register a connecting session.
	ErrHandshakeRejected = errors.New("handshake rejected")
	// ErrMalformedPayload is returned for inbound frames that are not a chat envelope.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrSessionNotActive is returned when a session is used outside the Active state.
	ErrSessionNotActive = errors.New("session not active")

	// ErrMemberClosed is a delivery fault for a member that already left.
	ErrMemberClosed = errors.New("member closed")
	// ErrSlowConsumer is a delivery fault for a member whose outbox is full.
	ErrSlowConsumer = errors.New("slow consumer")
)
