// Package routing matches inbound activities to handler chains and runs
// them through a middleware-style pipeline.
package routing

import (
	"github.com/relaykit/relay/pkg/activity"
)

// Selector decides whether a route applies to an activity.
type Selector func(a *activity.Activity) bool

// Handler processes an activity. It may read and mutate the shared Context,
// call next to hand off to the rest of the chain, and return a value that
// becomes the chain's result. A handler that does not call next stops the
// chain; a non-nil return overrides whatever the rest of the chain produced.
type Handler func(ctx *Context, next func() error) (any, error)

// Route pairs a selector with the handlers it activates. Fallback routes
// are evaluated after every specific route, so their handlers always run
// last for an activity that matches both.
type Route struct {
	Name     string
	Selector Selector
	Handlers []Handler
	Fallback bool
}

// Router holds routes in declaration order. Registration order is dispatch
// order: every matching route contributes its handlers, concatenated.
type Router struct {
	routes []Route
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Add appends a route. Routes of the same kind are evaluated in the order
// they were added; fallback routes always sort after specific ones.
func (r *Router) Add(route Route) *Router {
	r.routes = append(r.routes, route)
	return r
}

// OnMessage registers handlers for message activities.
func (r *Router) OnMessage(handlers ...Handler) *Router {
	return r.Add(Route{Name: "message", Selector: ByType(activity.TypeMessage), Handlers: handlers})
}

// OnConversationEvent registers handlers for a channel conversation event
// such as membersAdded or channelCreated.
func (r *Router) OnConversationEvent(eventType string, handlers ...Handler) *Router {
	return r.Add(Route{Name: "conversation:" + eventType, Selector: ConversationEvent(eventType), Handlers: handlers})
}

// OnMessageEvent registers handlers for a message edit or delete event.
func (r *Router) OnMessageEvent(eventType string, handlers ...Handler) *Router {
	return r.Add(Route{Name: "message:" + eventType, Selector: MessageEvent(eventType), Handlers: handlers})
}

// OnInvoke registers handlers for a named invoke activity.
func (r *Router) OnInvoke(name string, handlers ...Handler) *Router {
	return r.Add(Route{Name: "invoke:" + name, Selector: Invoke(name), Handlers: handlers})
}

// OnEvent registers handlers for a named event activity.
func (r *Router) OnEvent(name string, handlers ...Handler) *Router {
	return r.Add(Route{Name: "event:" + name, Selector: Event(name), Handlers: handlers})
}

// OnActivity registers handlers for every activity of the given type.
func (r *Router) OnActivity(t activity.Type, handlers ...Handler) *Router {
	return r.Add(Route{Name: "activity:" + string(t), Selector: ByType(t), Handlers: handlers})
}

// Use registers catch-all handlers that run for every activity, after the
// specific routes.
func (r *Router) Use(handlers ...Handler) *Router {
	return r.Add(Route{Name: "use", Selector: CatchAll(), Handlers: handlers, Fallback: true})
}

// SelectHandlers returns the handlers of every route whose selector
// matches: specific routes first in registration order, then fallback
// routes in registration order.
func (r *Router) SelectHandlers(a *activity.Activity) []Handler {
	var selected []Handler
	for _, route := range r.routes {
		if !route.Fallback && route.Selector != nil && route.Selector(a) {
			selected = append(selected, route.Handlers...)
		}
	}
	for _, route := range r.routes {
		if route.Fallback && route.Selector != nil && route.Selector(a) {
			selected = append(selected, route.Handlers...)
		}
	}
	return selected
}

// Routes returns the registered routes in declaration order.
func (r *Router) Routes() []Route {
	return r.routes
}

// ByType matches activities of the given type.
func ByType(t activity.Type) Selector {
	return func(a *activity.Activity) bool {
		return a.Type == t
	}
}

// ConversationEvent matches conversationUpdate activities carrying the given
// channel event type. Activities without channel data never match.
func ConversationEvent(eventType string) Selector {
	return func(a *activity.Activity) bool {
		if a.Type != activity.TypeConversationUpdate || a.ChannelData == nil {
			return false
		}
		return a.ChannelData.EventType == eventType
	}
}

// MessageEvent matches message edit and delete activities carrying the
// given channel event type, such as "editMessage" or "softDeleteMessage".
// Activities without channel data never match.
func MessageEvent(eventType string) Selector {
	return func(a *activity.Activity) bool {
		if a.Type != activity.TypeMessageUpdate && a.Type != activity.TypeMessageDelete {
			return false
		}
		return a.ChannelData != nil && a.ChannelData.EventType == eventType
	}
}

// Invoke matches invoke activities with the given name.
func Invoke(name string) Selector {
	return func(a *activity.Activity) bool {
		return a.Type == activity.TypeInvoke && a.Name == name
	}
}

// Event matches event activities with the given name.
func Event(name string) Selector {
	return func(a *activity.Activity) bool {
		return a.Type == activity.TypeEvent && a.Name == name
	}
}

// CatchAll matches every activity.
func CatchAll() Selector {
	return func(*activity.Activity) bool {
		return true
	}
}
