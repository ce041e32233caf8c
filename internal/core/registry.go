package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Member is a live connection registered in a room.
// Deliver is invoked while the registry holds its read lock, so it must not block.
type Member interface {
	Name() string
	Deliver(event *Event) error
}

// Hub is the room membership and fan-out contract sessions depend on.
type Hub interface {
	// Join adds m to room, creating the room if needed.
	Join(room string, m Member) error
	// Leave removes m from room. Unknown rooms or members are ignored.
	Leave(room string, m Member)
	// Broadcast delivers event to every member of room, including the sender,
	// and returns how many members accepted it.
	Broadcast(room string, event *Event) int
}

// Registry is the in-process Hub: a mutex-guarded map of room name to member set.
// Joins and leaves take the write lock; broadcasts take the read lock for the
// whole fan-out, so a member that has left never sees a later broadcast and
// concurrent broadcasts to any room proceed in parallel.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	joined map[string]string // member name -> room name
	closed bool
	log    *zerolog.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		rooms:  make(map[string]*Room),
		joined: make(map[string]string),
		log:    logger,
	}
}

var _ Hub = (*Registry)(nil)

// Join adds m to room. Joining the same room twice is a no-op; joining a
// different room while still a member elsewhere fails with ErrAlreadyJoined.
func (r *Registry) Join(room string, m Member) error {
	if room == "" {
		return ErrEmptyRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	name := m.Name()
	if current, ok := r.joined[name]; ok {
		if current == room {
			return nil
		}
		return ErrAlreadyJoined
	}

	rm, ok := r.rooms[room]
	if !ok {
		rm = NewRoom(room)
		r.rooms[room] = rm
	}
	rm.AddMember(m)
	r.joined[name] = room

	r.log.Debug().Str("room", room).Str("conn", name).Int("members", rm.Len()).Msg("member joined")
	return nil
}

// Leave removes m from room. The room entry is dropped once it is empty.
func (r *Registry) Leave(room string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if current, ok := r.joined[name]; !ok || current != room {
		return
	}
	delete(r.joined, name)

	rm, ok := r.rooms[room]
	if !ok {
		return
	}
	rm.RemoveMember(name)
	if rm.Empty() {
		delete(r.rooms, room)
	}

	r.log.Debug().Str("room", room).Str("conn", name).Msg("member left")
}

// Broadcast delivers event to all current members of room. A failing member is
// logged and skipped; it never stops delivery to the others.
func (r *Registry) Broadcast(room string, event *Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[room]
	if !ok {
		return 0
	}

	delivered := 0
	for name, m := range rm.members {
		if err := m.Deliver(event); err != nil {
			r.log.Warn().Err(err).Str("room", room).Str("conn", name).Msg("delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}

// Close rejects all future joins. Existing members may still leave and broadcast.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Members returns the sorted member names of room.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[room]
	if !ok {
		return nil
	}
	names := make([]string, 0, rm.Len())
	for name := range rm.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoomCount returns the number of non-empty rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ConnectionCount returns the number of registered members across all rooms.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.joined)
}
