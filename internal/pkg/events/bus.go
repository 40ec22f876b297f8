// internal/pkg/events/bus.go
package events

import "sync"

// Topics published by the order core.
const (
	TopicOrderSynced        = "order.synced"
	TopicOrderStatusChanged = "order.status_changed"
	TopicCatalogChanged     = "catalog.changed"
)

// Event is a notification that a watched table changed. Consumers re-derive
// their view from the store; the payload only says what moved.
type Event struct {
	Topic    string
	LocalID  string
	ServerID uint
	Payload  interface{}
}

// Bus is a small in-process subscription hub. A component registers interest
// in a topic, receives notifications, and unsubscribes explicitly on
// teardown. Publishing never blocks: a subscriber that stopped draining its
// channel misses events instead of wedging the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers interest in a topic. The returned function removes the
// subscription and closes the channel.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[topic][id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[topic][id]; ok {
			delete(b.subs[topic], id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish delivers an event to every current subscriber of its topic.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
