// Package feed fans record-change events out to live subscribers.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies change-event variants.
type EventType string

const (
	TypeClientCreated   EventType = "client_created"
	TypeClientUpdated   EventType = "client_updated"
	TypeClientDeleted   EventType = "client_deleted"
	TypeSessionRecorded EventType = "session_recorded"
)

// Event describes a single mutation of the record store.
type Event struct {
	Type      EventType `json:"type"`
	ClientID  int64     `json:"client_id"`
	SessionID int64     `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

// Hub broadcasts events to subscribers. Slow subscribers miss events rather
// than block publishers.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]chan Event
	buffer   int
	onChange func(subscribers int)
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]chan Event),
		buffer: buffer,
	}
}

// SetChangeHook registers fn to be called with the subscriber count whenever
// a subscriber joins or leaves. fn runs with the hub locked and must not call
// back into the hub.
func (h *Hub) SetChangeHook(fn func(subscribers int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Subscribe registers a new subscriber. The returned cancel func removes it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (string, <-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.notifyLocked()
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.notifyLocked()
			h.mu.Unlock()
		})
	}
	return id, ch, cancel
}

// notifyLocked reports the subscriber count to the change hook. Callers hold
// h.mu so hook calls observe counts in the order changes happened.
func (h *Hub) notifyLocked() {
	if h.onChange != nil {
		h.onChange(len(h.subs))
	}
}

// Publish delivers e to every subscriber with room in its buffer and returns
// how many received it.
func (h *Hub) Publish(e Event) int {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, ch := range h.subs {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
