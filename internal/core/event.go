package core

// EventKind is a notification the registry fans out to room members.
type EventKind int

const (
	// EventChatMessage carries a chat message relayed to every room member.
	EventChatMessage EventKind = iota
)

// Event is delivered to members of a room. Events are shared between
// recipients and must be treated as read-only.
type Event struct {
	Kind    EventKind
	Room    string
	From    Identity
	Message string
}
