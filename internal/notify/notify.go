// Package notify is the in-process broadcast channel between independent
// surfaces: the assistant publishes "task data changed" and the task list
// reacts by re-fetching. Delivery is synchronous and at-least-once within
// the process; nothing crosses process or restart boundaries.
package notify

import "sync"

// TopicTasksChanged signals that server-side task data may have changed.
const TopicTasksChanged = "tasks.changed"

// Bus is a minimal topic-keyed publish/subscribe hub. Subscribers must be
// registered before the publishing surface becomes interactable; signals
// published to a topic with no subscribers are dropped, not queued.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic string, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	id := b.next
	b.next++
	b.subs[topic][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every subscriber of topic on the caller's goroutine.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
