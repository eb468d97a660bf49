package routing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/plugin"
)

// Context is the shared state a handler chain operates on. One Context is
// built per inbound activity and passed to every handler in the chain.
type Context struct {
	// Activity is the inbound activity being processed.
	Activity *activity.Activity

	// Ref addresses the conversation the activity arrived on.
	Ref activity.ConversationReference

	// Logger is scoped to this activity.
	Logger *slog.Logger

	// AppToken is the bot's own credential token, if one was issued.
	AppToken *auth.Token

	// UserToken holds the signed-in user's token when sign-in resolved.
	UserToken *auth.Token

	// IsSignedIn reports whether a user token was available for this
	// activity's conversation.
	IsSignedIn bool

	ctx    context.Context
	sender plugin.Sender
	next   func() error

	streamMu sync.Mutex
	stream   plugin.Streamer

	valuesMu sync.Mutex
	values   map[string]any

	onSent func(*activity.Activity, *activity.SentActivity)
}

// Context returns the request-scoped context for cancellation and deadlines.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Next hands control to the remaining handlers in the chain. It is a no-op
// when the chain already produced a result or ran out of handlers.
func (c *Context) Next() error {
	if c.next == nil {
		return nil
	}
	return c.next()
}

// Set stores a value shared across the handlers of this activity.
func (c *Context) Set(key string, value any) {
	c.valuesMu.Lock()
	defer c.valuesMu.Unlock()
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Get fetches a value stored by an earlier handler.
func (c *Context) Get(key string) (any, bool) {
	c.valuesMu.Lock()
	defer c.valuesMu.Unlock()
	value, ok := c.values[key]
	return value, ok
}

// Send transmits an activity to this context's conversation.
func (c *Context) Send(a *activity.Activity) (*activity.SentActivity, error) {
	if c.sender == nil {
		return nil, ErrNoSender
	}
	sent, err := c.sender.Send(c.Context(), a, c.Ref)
	if err != nil {
		return nil, err
	}
	if c.onSent != nil {
		c.onSent(a, sent)
	}
	return sent, nil
}

// Reply sends a plain text message to the conversation.
func (c *Context) Reply(text string) (*activity.SentActivity, error) {
	return c.Send(activity.NewMessage(text).InReplyTo(c.Ref))
}

// Stream returns the streaming handle for this activity, opening one on
// first use. All handlers of the chain share the same stream.
func (c *Context) Stream() plugin.Streamer {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if c.stream == nil && c.sender != nil {
		c.stream = c.sender.CreateStream(c.Ref)
	}
	return c.stream
}

// openedStream returns the stream if a handler opened one, without opening
// a new one.
func (c *Context) openedStream() plugin.Streamer {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	return c.stream
}
