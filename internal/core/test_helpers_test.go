package core

import (
	"sync"
	"testing"
	"time"
)

// recordingMember is a Member that stores every delivered event.
type recordingMember struct {
	name string
	err  error

	mu     sync.Mutex
	events []*Event
}

func newMember(name string) *recordingMember {
	return &recordingMember{name: name}
}

func (m *recordingMember) Name() string { return m.name }

func (m *recordingMember) Deliver(event *Event) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

func (m *recordingMember) received() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// failingHub rejects every join.
type failingHub struct {
	err    error
	leaves int
}

func (h *failingHub) Join(string, Member) error { return h.err }

func (h *failingHub) Leave(string, Member) { h.leaves++ }

func (h *failingHub) Broadcast(string, *Event) int { return 0 }

// blockingHub holds Join until release is closed, then returns err.
type blockingHub struct {
	err     error
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	leaves int
}

func newBlockingHub(err error) *blockingHub {
	return &blockingHub{
		err:     err,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (h *blockingHub) Join(string, Member) error {
	close(h.entered)
	<-h.release
	return h.err
}

func (h *blockingHub) Leave(string, Member) {
	h.mu.Lock()
	h.leaves++
	h.mu.Unlock()
}

func (h *blockingHub) Broadcast(string, *Event) int { return 0 }

func (h *blockingHub) leaveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leaves
}

func mustEvent(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event not received")
		return nil
	}
}

func expectNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
