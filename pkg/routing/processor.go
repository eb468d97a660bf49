package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/bus"
	"github.com/relaykit/relay/pkg/observability"
	"github.com/relaykit/relay/pkg/plugin"
)

// UserTokenProbe checks whether a signed-in user token exists for the
// activity's channel and user. auth.Manager satisfies it.
type UserTokenProbe interface {
	GetUserToken(ctx context.Context, channelID, userID string) (*auth.Token, error)
}

// Processor turns inbound activity events into responses. It selects the
// matching handler chain, builds the shared context, runs the chain, and
// converts the chain result into a wire response.
type Processor struct {
	router *Router
	events *bus.Bus
	tokens UserTokenProbe
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithTokenProbe wires the sign-in probe used to populate the context's
// user token.
func WithTokenProbe(probe UserTokenProbe) ProcessorOption {
	return func(p *Processor) {
		p.tokens = probe
	}
}

// WithLogger sets the processor's logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a processor dispatching through the given router and
// publishing lifecycle events on the given bus.
func NewProcessor(router *Router, events *bus.Bus, opts ...ProcessorOption) *Processor {
	p := &Processor{
		router: router,
		events: events,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the handler chain for the inbound activity and returns the
// response to put on the wire. An open stream is always finalized before
// returning, whichever way the chain exits.
func (p *Processor) Process(ctx context.Context, ev plugin.ActivityEvent) (*activity.Response, error) {
	a := ev.Activity
	started := time.Now()

	logger := p.logger.With("activity_id", a.ID, "activity_type", string(a.Type))
	c := &Context{
		Activity: a,
		Ref:      a.Ref(),
		Logger:   logger,
		AppToken: ev.Token,
		ctx:      ctx,
		sender:   ev.Sender,
		onSent: func(sent *activity.Activity, _ *activity.SentActivity) {
			p.events.Publish("activity-sent", plugin.ActivitySentEvent{Activity: sent, Ref: a.Ref()})
		},
	}
	p.probeSignIn(ctx, c)

	handlers := p.router.SelectHandlers(a)
	result, err := p.runChain(c, handlers)
	p.closeStream(ctx, c)

	observability.ActivityDuration.WithLabelValues(string(a.Type)).Observe(time.Since(started).Seconds())

	if err != nil {
		observability.ActivitiesProcessed.WithLabelValues(string(a.Type), "error").Inc()
		logger.Error("handler chain failed", "err", err)
		p.events.Publish("error", plugin.ErrorEvent{
			Err:      err,
			Activity: a,
			Context:  map[string]any{"activity_id": a.ID, "activity_type": string(a.Type)},
		})
		res := activity.InternalError(err.Error())
		p.publishResponse(a, res)
		return res, err
	}

	res := toResponse(result)
	observability.ActivitiesProcessed.WithLabelValues(string(a.Type), "ok").Inc()
	p.publishResponse(a, res)
	return res, nil
}

// runChain executes the handler chain, converting a panicking handler into
// an ordinary chain error so one bad handler never takes down in-flight
// siblings.
func (p *Processor) runChain(c *Context, handlers []Handler) (result any, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		rerr, ok := r.(error)
		if !ok {
			rerr = fmt.Errorf("%v", r)
		}
		err = fmt.Errorf("handler panic: %w", rerr)
	}()

	return newChain(c, handlers).run()
}

// probeSignIn fills in the user token when a sign-in connection is
// configured. A missing connection name means sign-in is simply not in
// play; probe failures degrade to signed-out.
func (p *Processor) probeSignIn(ctx context.Context, c *Context) {
	if p.tokens == nil || c.Activity.From.ID == "" {
		return
	}
	token, err := p.tokens.GetUserToken(ctx, c.Activity.ChannelID, c.Activity.From.ID)
	if err != nil {
		if !errors.Is(err, auth.ErrNoConnectionName) {
			c.Logger.Debug("user token probe failed", "err", err)
		}
		return
	}
	if token != nil && !token.IsExpired() {
		c.UserToken = token
		c.IsSignedIn = true
	}
}

// closeStream finalizes the stream if a handler opened one and left it
// open.
func (p *Processor) closeStream(ctx context.Context, c *Context) {
	stream := c.openedStream()
	if stream == nil || stream.Closed() {
		return
	}
	if _, err := stream.Close(ctx); err != nil {
		c.Logger.Error("closing stream", "err", err)
	}
}

func (p *Processor) publishResponse(a *activity.Activity, res *activity.Response) {
	p.events.Publish("activity-response", plugin.ActivityResponseEvent{
		Activity: a,
		Response: res,
		Ref:      a.Ref(),
	})
}

// toResponse converts a chain result into a wire response. A chain that
// produced nothing is a plain 200; a ready-made response passes through;
// anything else becomes the 200 body.
func toResponse(result any) *activity.Response {
	switch v := result.(type) {
	case nil:
		return &activity.Response{Status: http.StatusOK}
	case *activity.Response:
		return v
	case activity.Response:
		return &v
	default:
		return activity.OK(v)
	}
}
