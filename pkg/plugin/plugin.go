// Package plugin defines the runtime's extension surface: the plugin
// interface, its lifecycle hooks, and the container that registers plugins,
// resolves their declared dependencies, and wires their declared event
// subscriptions through the bus.
package plugin

import (
	"context"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/auth"
)

// Metadata identifies a plugin. Name is the registration key; exactly one
// instance per name may exist.
type Metadata struct {
	Name        string
	Version     string
	Description string
}

// Dependency is a named value a plugin asks the container to resolve at
// injection time. Missing required dependencies are fatal configuration
// errors; missing optional ones leave the slot unset.
type Dependency struct {
	Name     string
	Optional bool
}

// Resolved holds the dependency values handed to OnInit, keyed by the
// declared dependency name. Optional dependencies that could not be resolved
// are absent.
type Resolved map[string]any

// Get returns the resolved value for name, if any.
func (r Resolved) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Plugin is a pluggable runtime component. The container reads the
// declarations once at registration time and calls OnInit after resolving
// dependencies and binding event emitters.
type Plugin interface {
	Metadata() Metadata
	Dependencies() []Dependency
	Subscriptions() []string
	OnInit(deps Resolved) error
}

// Optional lifecycle hooks, discovered by type assertion.

// Starter is notified when the app starts.
type Starter interface {
	OnStart(ctx context.Context) error
}

// Stopper is notified when the app stops.
type Stopper interface {
	OnStop(ctx context.Context) error
}

// ErrorObserver receives runtime errors.
type ErrorObserver interface {
	OnError(ev ErrorEvent)
}

// ActivitySentObserver receives every activity sent through a context.
type ActivitySentObserver interface {
	OnActivitySent(ev ActivitySentEvent)
}

// ActivityResponseObserver receives the terminal response of every processed
// activity, success or failure.
type ActivityResponseObserver interface {
	OnActivityResponse(ev ActivityResponseEvent)
}

// ActivityDispatcher dispatches an inbound activity into the runtime and
// returns the processed response. This is the request/response channel
// layered on top of the otherwise fire-and-forget bus.
type ActivityDispatcher func(ctx context.Context, ev ActivityEvent) (*activity.Response, error)

// Emitter bindings. A plugin that declares the matching subscription must
// implement the binder; the container hands it the bound function during
// injection.

// ActivityEmitter is implemented by transport-style plugins that receive
// raw activities and push them into the runtime.
type ActivityEmitter interface {
	BindActivityEmitter(dispatch ActivityDispatcher)
}

// ErrorEmitter is implemented by plugins that surface errors system-wide.
type ErrorEmitter interface {
	BindErrorEmitter(emit func(ev ErrorEvent))
}

// CustomEmitter is implemented by plugins that publish their own event
// topics. Reserved runtime topics are refused.
type CustomEmitter interface {
	BindCustomEmitter(emit func(event string, payload any))
}

// Event payloads.

// ActivityEvent is an inbound activity plus the transport-resolved auth
// token and the sender that can reply to it.
type ActivityEvent struct {
	Activity *activity.Activity
	Token    *auth.Token
	Sender   Sender
}

// ErrorEvent reports a runtime failure, optionally tied to an activity.
type ErrorEvent struct {
	Err      error
	Activity *activity.Activity
	Context  map[string]any
}

// ActivitySentEvent reports an outbound activity that was transmitted.
type ActivitySentEvent struct {
	Activity *activity.Activity
	Ref      activity.ConversationReference
}

// ActivityResponseEvent reports the terminal response for an inbound
// activity.
type ActivityResponseEvent struct {
	Activity *activity.Activity
	Response *activity.Response
	Ref      activity.ConversationReference
}
