// Package events provides the in-process pub/sub bus used to propagate
// invalidation across independent components, replacing ad hoc DOM events.
package events

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "studentstore_events_published_total",
	Help: "Total events published by topic",
}, []string{"topic"})

// Topic identifies an event stream.
type Topic string

// Topics the storefront publishes.
const (
	// TopicAdminUpdate fires when the back office changed server data.
	TopicAdminUpdate Topic = "admin.update"

	// TopicHomepageUpdate fires when banners or featured sections changed.
	TopicHomepageUpdate Topic = "homepage.update"

	// TopicWishlistUpdated fires when the user's wishlist membership changed.
	TopicWishlistUpdated Topic = "wishlist.updated"

	// TopicUserLogout fires when the session ends.
	TopicUserLogout Topic = "user.logout"
)

// Event is one published occurrence.
type Event struct {
	Topic Topic

	// Resource optionally narrows the event to one cache namespace
	// (e.g. "category:42"). Empty means everything under the topic.
	Resource string
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous in-process event bus. Publish delivers to every
// subscriber of the topic on the calling goroutine, mirroring same-tab
// event dispatch; handlers must not block.
type Bus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[Topic][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]subscription),
	}
}

// Subscribe registers a handler for a topic and returns its unsubscribe
// function.
func (b *Bus) Subscribe(topic Topic, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[topic] = append(b.subscribers[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[topic]
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to all current subscribers of its topic.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[event.Topic]))
	copy(subs, b.subscribers[event.Topic])
	b.mu.RUnlock()

	eventsPublishedTotal.WithLabelValues(string(event.Topic)).Inc()

	for _, sub := range subs {
		sub.handler(event)
	}
}
