package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relaykit/relay/internal/logging"
	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/bus"
	"github.com/relaykit/relay/pkg/plugin"
	"github.com/relaykit/relay/pkg/retry"
	"github.com/relaykit/relay/pkg/routing"
)

// App is the high-level entry point for the relay runtime. It owns the
// event bus, the plugin container, the token manager, and the activity
// processor, and wires them together at construction time.
type App struct {
	logger *slog.Logger
	events *bus.Bus
	router *routing.Router

	container *plugin.Container
	tokens    *auth.Manager
	processor *routing.Processor
	retry     retry.Policy

	creds     auth.ClientCredentials
	authOpts  []auth.ManagerOption
	plugins   []plugin.Plugin
	providers map[string]any
	skipCatch bool
}

// New builds an App, registers and injects its plugins, and wires plugin
// observers to the bus. Configuration problems (duplicate plugin names,
// missing required dependencies, unknown subscriptions) fail here, before
// any activity can be processed.
func New(opts ...Option) (*App, error) {
	a := &App{
		logger:    logging.NewNop(),
		router:    routing.NewRouter(),
		retry:     retry.DefaultPolicy,
		providers: map[string]any{},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.events = bus.New(bus.WithLogger(a.logger))
	a.tokens = auth.NewManager(a.creds, append([]auth.ManagerOption{auth.WithLogger(a.logger)}, a.authOpts...)...)
	a.processor = routing.NewProcessor(a.router, a.events,
		routing.WithTokenProbe(a.tokens),
		routing.WithLogger(a.logger),
	)

	a.container = plugin.NewContainer(a.events, plugin.WithLogger(a.logger))
	a.container.SetActivityDispatcher(a.Process)
	a.container.SetProvider("logger", a.logger)
	a.container.SetProvider("bus", a.events)
	a.container.SetProvider("tokens", a.tokens)
	a.container.SetProvider("router", a.router)
	for name, value := range a.providers {
		a.container.SetProvider(name, value)
	}

	if !a.skipCatch {
		a.router.Use(func(ctx *routing.Context, next func() error) (any, error) {
			ctx.Logger.Debug("activity received", "text_len", len(ctx.Activity.Text))
			return nil, next()
		})
	}

	if err := a.container.Register(a.plugins...); err != nil {
		return nil, err
	}
	for _, p := range a.container.Plugins() {
		if err := a.container.Inject(p); err != nil {
			return nil, err
		}
		a.observe(p)
	}
	return a, nil
}

// observe subscribes the plugin's observer hooks to the runtime topics.
func (a *App) observe(p plugin.Plugin) {
	if obs, ok := p.(plugin.ErrorObserver); ok {
		a.events.Subscribe("error", func(payload any) {
			if ev, ok := payload.(plugin.ErrorEvent); ok {
				obs.OnError(ev)
			}
		})
	}
	if obs, ok := p.(plugin.ActivitySentObserver); ok {
		a.events.Subscribe("activity-sent", func(payload any) {
			if ev, ok := payload.(plugin.ActivitySentEvent); ok {
				obs.OnActivitySent(ev)
			}
		})
	}
	if obs, ok := p.(plugin.ActivityResponseObserver); ok {
		a.events.Subscribe("activity-response", func(payload any) {
			if ev, ok := payload.(plugin.ActivityResponseEvent); ok {
				obs.OnActivityResponse(ev)
			}
		})
	}
}

// Start refreshes the bot token and brings the plugins up. The "start"
// event fires after every plugin started successfully.
func (a *App) Start(ctx context.Context) error {
	err := a.retry.Run(ctx, func(ctx context.Context) error {
		_, err := a.tokens.RefreshBotToken(ctx, false)
		return err
	})
	if err != nil {
		return fmt.Errorf("refreshing bot token: %w", err)
	}

	for _, p := range a.container.Plugins() {
		starter, ok := p.(plugin.Starter)
		if !ok {
			continue
		}
		if err := starter.OnStart(ctx); err != nil {
			return fmt.Errorf("starting plugin %s: %w", p.Metadata().Name, err)
		}
	}

	a.events.Publish("start", nil)
	a.logger.Info("app started")
	return nil
}

// Stop brings the plugins down in reverse registration order and fires the
// "stop" event. The first stop failure is returned but does not prevent
// the remaining plugins from stopping.
func (a *App) Stop(ctx context.Context) error {
	var firstErr error
	plugins := a.container.Plugins()
	for i := len(plugins) - 1; i >= 0; i-- {
		stopper, ok := plugins[i].(plugin.Stopper)
		if !ok {
			continue
		}
		if err := stopper.OnStop(ctx); err != nil {
			a.logger.Error("stopping plugin", "plugin", plugins[i].Metadata().Name, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.events.Publish("stop", nil)
	a.logger.Info("app stopped")
	return firstErr
}

// Process dispatches one inbound activity through the handler chain. The
// event's token is filled from the token manager when the caller left it
// unset.
func (a *App) Process(ctx context.Context, ev plugin.ActivityEvent) (*activity.Response, error) {
	if ev.Activity == nil {
		return nil, fmt.Errorf("nil activity")
	}
	if ev.Token == nil {
		token, err := a.tokens.RefreshBotToken(ctx, false)
		if err != nil {
			a.logger.Warn("bot token unavailable", "err", err)
		} else {
			ev.Token = token
		}
	}
	return a.processor.Process(ctx, ev)
}

// Router exposes the route table for handler registration.
func (a *App) Router() *routing.Router {
	return a.router
}

// Bus exposes the event bus for custom topics.
func (a *App) Bus() *bus.Bus {
	return a.events
}

// Tokens exposes the token manager.
func (a *App) Tokens() *auth.Manager {
	return a.tokens
}

// Plugin returns the registered plugin with the given name, or nil.
func (a *App) Plugin(name string) plugin.Plugin {
	return a.container.Get(name)
}

// OnMessage registers handlers for message activities.
func (a *App) OnMessage(handlers ...routing.Handler) *App {
	a.router.OnMessage(handlers...)
	return a
}

// OnConversationEvent registers handlers for a channel conversation event.
func (a *App) OnConversationEvent(eventType string, handlers ...routing.Handler) *App {
	a.router.OnConversationEvent(eventType, handlers...)
	return a
}

// OnInvoke registers handlers for a named invoke activity.
func (a *App) OnInvoke(name string, handlers ...routing.Handler) *App {
	a.router.OnInvoke(name, handlers...)
	return a
}

// OnEvent registers handlers for a named event activity.
func (a *App) OnEvent(name string, handlers ...routing.Handler) *App {
	a.router.OnEvent(name, handlers...)
	return a
}
