package event

import (
	"log"
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel depth.  Delivery is
// at-most-once: when a subscriber's buffer is full the event is dropped
// for that subscriber rather than blocking the publisher.  Durable truth
// lives in the reservation store, not in the event stream.
const subscriberBuffer = 64

// Subscriber is one attached client.  Events arrive on C until
// Unsubscribe closes it.
type Subscriber struct {
	C      chan Event
	id     uint64
	userID uint64
	topics map[string]bool
}

// Broadcaster fans events out to topic subscribers and per-user private
// queues.  It implements Sink; Publish never blocks.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscriber

	// disabledTopics suppresses delivery on feature-gated topics
	// (message square) without callers having to know about the gate.
	disabledTopics map[string]bool
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs:           make(map[uint64]*Subscriber),
		disabledTopics: make(map[string]bool),
	}
}

// DisableTopic suppresses all future delivery on a broadcast topic.
func (b *Broadcaster) DisableTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabledTopics[topic] = true
}

// Subscribe attaches a client.  The client receives every event
// published on the requested topics plus every private event addressed
// to userID.  A userID of zero subscribes to broadcast topics only.
func (b *Broadcaster) Subscribe(userID uint64, topics ...string) *Subscriber {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscriber{
		C:      make(chan Event, subscriberBuffer),
		id:     b.nextID,
		userID: userID,
		topics: set,
	}
	b.subs[s.id] = s
	return s
}

// Unsubscribe detaches the client and closes its channel.  Safe to call
// once per subscriber.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.C)
}

// Publish delivers the event to every matching subscriber without
// blocking.  A full subscriber buffer drops the event for that
// subscriber only.
func (b *Broadcaster) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if ev.Topic != "" && b.disabledTopics[ev.Topic] {
		return
	}
	for _, s := range b.subs {
		if !match(s, ev) {
			continue
		}
		select {
		case s.C <- ev:
		default:
			log.Printf("broadcaster: dropping %s event for slow subscriber %d", ev.Kind, s.id)
		}
	}
}

func match(s *Subscriber, ev Event) bool {
	if ev.Private() {
		return s.userID == ev.UserID
	}
	return s.topics[ev.Topic]
}

// SubscriberCount reports the number of attached clients, for the
// online-status topic and monitoring views.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
