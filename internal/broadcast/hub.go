// Package broadcast fans live tally updates out to connected observers.
//
// Subscribers choose an election when they connect and only receive events for
// it; subscribing to uuid.Nil receives every election's events. Delivery is best
// effort: a subscriber whose buffer is full misses the event and catches up on its
// next explicit fetch.
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"campusvote/internal/model"
)

// EventVoteUpdated is the event name carried on the wire.
const EventVoteUpdated = "voteUpdated"

const subscriberBuffer = 16

// Event is a successful-state snapshot of one election's candidates.
type Event struct {
	ElectionID uuid.UUID         `json:"electionId"`
	Candidates []model.Candidate `json:"candidates"`
}

// Publisher delivers events to observers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscription receives events for one election (or all, for uuid.Nil).
type Subscription struct {
	C          <-chan Event
	electionID uuid.UUID
	ch         chan Event
	hub        *Hub
	once       sync.Once
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub is an in-process topic publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[uuid.UUID]map[*Subscription]struct{}
	// dropped counts events not delivered because a subscriber was slow.
	dropped atomic.Int64
}

// Ensure Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[uuid.UUID]map[*Subscription]struct{})}
}

// Subscribe registers interest in an election's events.
func (h *Hub) Subscribe(electionID uuid.UUID) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, electionID: electionID, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[electionID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[electionID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[sub.electionID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, sub.electionID)
		}
	}
	close(sub.ch)
}

// Publish delivers event to the election's subscribers and to catch-all
// subscribers without blocking. It never fails.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliver(h.topics[event.ElectionID], event)
	if event.ElectionID != uuid.Nil {
		h.deliver(h.topics[uuid.Nil], event)
	}
	return nil
}

func (h *Hub) deliver(subs map[*Subscription]struct{}, event Event) {
	for sub := range subs {
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribers returns the number of live subscriptions for an election.
func (h *Hub) Subscribers(electionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[electionID])
}
