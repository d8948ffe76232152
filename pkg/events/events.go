// Package events defines the observable transitions the bridge broadcasts
// to the debug API. Events are strictly an observer side-channel: nothing
// in the core forwarding or STP logic ever reads them back.
package events

import (
	"sync"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	PortBlocked   Kind = "port_blocked"
	PortUnblocked Kind = "port_unblocked"
	RootChanged   Kind = "root_changed"
	FrameDropped  Kind = "frame_dropped"
	BPDUDropped   Kind = "bpdu_dropped"
)

// Event is one observable transition, broadcast to debug API subscribers.
type Event struct {
	Kind     Kind      `json:"kind"`
	Time     time.Time `json:"time"`
	Port     int       `json:"port,omitempty"`
	PortName string    `json:"port_name,omitempty"`
	RootBID  int64     `json:"root_bid,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Bus is a best-effort fan-out: Publish never blocks on a slow subscriber.
// A subscriber whose buffered channel is full simply misses the event.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus returns an empty, ready-to-use Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Publish broadcasts ev to every current subscriber without blocking. The
// timestamp is stamped here rather than left to callers, so every event
// reaching a subscriber carries the time it was actually published.
func (b *Bus) Publish(ev Event) {
	ev.Time = time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new buffered channel that will receive future
// events. Call the returned function to unsubscribe.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, unsubscribe
}
