package core

// Room groups members subscribed to the same group name.
type Room struct {
	Name    string
	members map[string]Member
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]Member),
	}
}

// AddMember inserts a member into the room. Returns true if newly added.
func (r *Room) AddMember(m Member) bool {
	if _, exists := r.members[m.Name()]; exists {
		return false
	}
	r.members[m.Name()] = m
	return true
}

// RemoveMember deletes a member from the room. Returns true if removed.
func (r *Room) RemoveMember(name string) bool {
	if _, exists := r.members[name]; !exists {
		return false
	}
	delete(r.members, name)
	return true
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no members are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
