// Package bus provides the typed publish/subscribe hub connecting plugins to
// runtime lifecycle events.
package bus

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// ErrorEventName is the topic that receives handler faults.
const ErrorEventName = "error"

// Handler consumes a published payload.
type Handler func(payload any)

type subscription struct {
	id      int
	event   string
	handler Handler
	once    bool
}

// Bus dispatches named events to subscribers synchronously, in subscription
// order. A panicking handler never prevents its siblings from running: the
// fault is recovered and re-published on the "error" topic (or logged when
// the faulting topic is "error" itself).
//
// Subscriber lists may be mutated during dispatch; Publish operates on a
// snapshot taken at call time.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]*subscription
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for faults on the "error" topic.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[string][]*subscription),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for event and returns its subscription id.
// Ids are unique for the bus's lifetime and never reused.
func (b *Bus) Subscribe(event string, handler Handler) int {
	return b.add(event, handler, false)
}

// SubscribeOnce registers handler for a single delivery. The subscription is
// removed immediately before the handler's only invocation.
func (b *Bus) SubscribeOnce(event string, handler Handler) int {
	return b.add(event, handler, true)
}

func (b *Bus) add(event string, handler Handler, once bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, event: event, handler: handler, once: once}
	b.subs[event] = append(b.subs[event], sub)
	return sub.id
}

// Unsubscribe removes the subscription with the given id, if it still exists.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for event, subs := range b.subs {
		for i, sub := range subs {
			if sub.id == id {
				b.removeLocked(event, i)
				return
			}
		}
	}
}

// Publish delivers payload to every current subscriber of event. Publishing
// to an event with no subscribers is a no-op.
func (b *Bus) Publish(event string, payload any) {
	b.mu.Lock()
	snapshot := make([]*subscription, len(b.subs[event]))
	copy(snapshot, b.subs[event])

	for _, sub := range snapshot {
		if sub.once {
			b.dropLocked(sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.invoke(sub, event, payload)
	}
}

func (b *Bus) invoke(sub *subscription, event string, payload any) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}

		if event == ErrorEventName {
			// Re-publishing would recurse; surface through the logger.
			b.logger.Error("error-event handler fault", "err", err)
			return
		}
		b.Publish(ErrorEventName, HandlerFault{Event: event, Err: err})
	}()

	sub.handler(payload)
}

// HandlerFault is the payload published on the "error" topic when a
// subscriber panics.
type HandlerFault struct {
	Event string
	Err   error
}

// ListenerCount returns the number of current subscribers for event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

// EventNames returns the sorted names of events with at least one subscriber.
func (b *Bus) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.subs))
	for event, subs := range b.subs {
		if len(subs) > 0 {
			names = append(names, event)
		}
	}
	sort.Strings(names)
	return names
}

// RemoveAllListeners drops every subscription for the named events, or for
// all events when none are named.
func (b *Bus) RemoveAllListeners(events ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(events) == 0 {
		b.subs = make(map[string][]*subscription)
		return
	}
	for _, event := range events {
		delete(b.subs, event)
	}
}

func (b *Bus) dropLocked(target *subscription) {
	for i, sub := range b.subs[target.event] {
		if sub.id == target.id {
			b.removeLocked(target.event, i)
			return
		}
	}
}

func (b *Bus) removeLocked(event string, i int) {
	subs := b.subs[event]
	b.subs[event] = append(subs[:i:i], subs[i+1:]...)
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}
