package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

// DefaultOutboxSize is used when a session is created with a non-positive outbox size.
const DefaultOutboxSize = 32

// SessionState is a step in the per-connection lifecycle.
type SessionState int

const (
	// StateConnecting is the state before the session has joined its room.
	StateConnecting SessionState = iota
	// StateActive means the session is registered and relaying messages.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// GroupName returns the registry key for a room.
func GroupName(room string) string {
	return "chat_" + room
}

// Session is the state machine of one connection: Connecting, Active, Closed.
// It is the registry Member for its connection; relayed events are queued on
// Outbox for the transport to write.
type Session struct {
	name     string
	room     string
	group    string
	identity Identity
	hub      Hub
	log      zerolog.Logger

	mu     sync.Mutex
	state  SessionState
	outbox chan *Event
	done   chan struct{}
}

// NewSession builds a session in the Connecting state.
func NewSession(hub Hub, name, room string, identity Identity, outboxSize int, logger *zerolog.Logger) *Session {
	if outboxSize <= 0 {
		outboxSize = DefaultOutboxSize
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Session{
		name:     name,
		room:     room,
		group:    GroupName(room),
		identity: identity,
		hub:      hub,
		log:      logger.With().Str("conn", name).Str("room", room).Logger(),
		state:    StateConnecting,
		outbox:   make(chan *Event, outboxSize),
		done:     make(chan struct{}),
	}
}

// Name implements Member.
func (s *Session) Name() string { return s.name }

// Room returns the room name requested at connect time.
func (s *Session) Room() string { return s.room }

// Identity returns the identity attached at handshake time.
func (s *Session) Identity() Identity { return s.identity }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outbox yields events to be written to the client.
func (s *Session) Outbox() <-chan *Event { return s.outbox }

// Done is closed when the session reaches StateClosed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Open joins the room and moves the session to Active. Any failure closes the
// session and is reported as ErrHandshakeRejected.
func (s *Session) Open() error {
	s.mu.Lock()
	if s.state != StateConnecting {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: session is %s", ErrHandshakeRejected, state)
	}
	if s.room == "" {
		s.closeLocked()
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrHandshakeRejected, ErrEmptyRoom)
	}
	s.mu.Unlock()

	joinErr := s.hub.Join(s.group, s)

	s.mu.Lock()
	if joinErr != nil {
		if s.state != StateClosed {
			s.closeLocked()
		}
		s.mu.Unlock()
		s.log.Error().Err(joinErr).Msg("join room failed")
		return fmt.Errorf("%w: %w", ErrHandshakeRejected, joinErr)
	}
	if s.state == StateClosed {
		// Closed while joining: undo the registration.
		s.mu.Unlock()
		s.hub.Leave(s.group, s)
		return fmt.Errorf("%w: session closed during join", ErrHandshakeRejected)
	}
	s.state = StateActive
	s.mu.Unlock()

	s.log.Info().Str("user", s.identity.String()).Msg("session active")
	return nil
}

// Receive decodes one inbound frame and broadcasts its text to the room.
// Frames that are not a chat envelope return ErrMalformedPayload and broadcast nothing.
func (s *Session) Receive(payload []byte) error {
	if state := s.State(); state != StateActive {
		return fmt.Errorf("%w: session is %s", ErrSessionNotActive, state)
	}

	text, err := proto.DecodeInbound(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	delivered := s.hub.Broadcast(s.group, &Event{
		Kind:    EventChatMessage,
		Room:    s.room,
		From:    s.identity,
		Message: text,
	})
	s.log.Debug().Int("delivered", delivered).Msg("message relayed")
	return nil
}

// Deliver implements Member. It never blocks: a full outbox is ErrSlowConsumer.
func (s *Session) Deliver(event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrMemberClosed
	}
	select {
	case s.outbox <- event:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close moves the session to Closed and leaves the room. Calls after the first are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	wasActive := s.state == StateActive
	s.closeLocked()
	s.mu.Unlock()

	// Leave runs outside s.mu: Broadcast holds the registry lock while calling Deliver.
	if wasActive {
		s.hub.Leave(s.group, s)
		s.log.Info().Msg("session closed")
	}
}

func (s *Session) closeLocked() {
	s.state = StateClosed
	close(s.done)
}
