package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/bus"
)

// Configuration errors. All of them are startup-time fatal: the runtime
// refuses to come up with a misconfigured plugin set.
var (
	ErrDuplicatePlugin     = errors.New("duplicate plugin")
	ErrMissingName         = errors.New("plugin missing name")
	ErrMissingDependency   = errors.New("missing required dependency")
	ErrUnknownSubscription = errors.New("unknown event subscription")
	ErrNotBindable         = errors.New("plugin does not implement the binder for its subscription")
	ErrNoDispatcher        = errors.New("no activity dispatcher registered")
)

// Reserved event topics owned by the runtime. Custom plugin emitters may not
// publish under these names.
var reservedEvents = map[string]bool{
	"error":             true,
	"activity":          true,
	"activity-sent":     true,
	"activity-response": true,
	"start":             true,
	"stop":              true,
}

// IsReservedEvent reports whether name is a runtime-owned topic.
func IsReservedEvent(name string) bool {
	return reservedEvents[name]
}

// Container owns the process's plugins. It registers them by declared name,
// resolves their dependencies from a provider registry, and wires their
// declared event subscriptions through the bus.
type Container struct {
	bus       *bus.Bus
	logger    *slog.Logger
	plugins   []Plugin
	byName    map[string]Plugin
	providers map[string]any
	dispatch  ActivityDispatcher
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithLogger sets the container's logger.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.logger = logger
	}
}

// NewContainer creates an empty container wired to the given bus.
func NewContainer(b *bus.Bus, opts ...ContainerOption) *Container {
	c := &Container{
		bus:       b,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		byName:    make(map[string]Plugin),
		providers: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetProvider registers a value resolvable as a plugin dependency.
func (c *Container) SetProvider(name string, value any) {
	c.providers[name] = value
}

// SetActivityDispatcher registers the function backing the "activity"
// request/response binding. The app points this at its processor.
func (c *Container) SetActivityDispatcher(fn ActivityDispatcher) {
	c.dispatch = fn
}

// Register stores the plugins under their declared names and makes each
// resolvable as a dependency of later plugins. A duplicate name is a fatal
// configuration error; nothing registers partially on failure within a
// single plugin, but earlier plugins in the slice remain registered.
func (c *Container) Register(plugins ...Plugin) error {
	for _, p := range plugins {
		meta := p.Metadata()
		if meta.Name == "" {
			return fmt.Errorf("%w: %T", ErrMissingName, p)
		}
		if _, exists := c.byName[meta.Name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, meta.Name)
		}

		c.plugins = append(c.plugins, p)
		c.byName[meta.Name] = p
		c.SetProvider(meta.Name, p)
	}
	return nil
}

// Get returns the plugin registered under name, or nil.
func (c *Container) Get(name string) Plugin {
	return c.byName[name]
}

// Plugins returns the registered plugins in registration order.
func (c *Container) Plugins() []Plugin {
	return c.plugins
}

// Inject resolves the plugin's declared dependencies, binds its declared
// event subscriptions, and calls OnInit with the resolved set. A missing
// required dependency or an unbindable subscription is a fatal configuration
// error.
func (c *Container) Inject(p Plugin) error {
	name := p.Metadata().Name

	deps := Resolved{}
	for _, dep := range p.Dependencies() {
		value, ok := c.providers[dep.Name]
		if !ok {
			if dep.Optional {
				continue
			}
			return fmt.Errorf("%w: plugin %s requires %q", ErrMissingDependency, name, dep.Name)
		}
		deps[dep.Name] = value
	}

	for _, event := range p.Subscriptions() {
		if err := c.bind(p, event); err != nil {
			return err
		}
	}

	if err := p.OnInit(deps); err != nil {
		return fmt.Errorf("initializing plugin %s: %w", name, err)
	}
	return nil
}

func (c *Container) bind(p Plugin, event string) error {
	name := p.Metadata().Name

	switch event {
	case "activity":
		emitter, ok := p.(ActivityEmitter)
		if !ok {
			return fmt.Errorf("%w: plugin %s, event %q", ErrNotBindable, name, event)
		}
		emitter.BindActivityEmitter(func(ctx context.Context, ev ActivityEvent) (*activity.Response, error) {
			c.bus.Publish("activity", ev)
			if c.dispatch == nil {
				return nil, ErrNoDispatcher
			}
			return c.dispatch(ctx, ev)
		})

	case "error":
		emitter, ok := p.(ErrorEmitter)
		if !ok {
			return fmt.Errorf("%w: plugin %s, event %q", ErrNotBindable, name, event)
		}
		emitter.BindErrorEmitter(func(ev ErrorEvent) {
			c.bus.Publish("error", ev)
		})

	case "custom":
		emitter, ok := p.(CustomEmitter)
		if !ok {
			return fmt.Errorf("%w: plugin %s, event %q", ErrNotBindable, name, event)
		}
		emitter.BindCustomEmitter(func(topic string, payload any) {
			if IsReservedEvent(topic) {
				c.logger.Warn("plugin tried to emit a reserved event", "plugin", name, "event", topic)
				return
			}
			c.bus.Publish(topic, payload)
		})

	default:
		return fmt.Errorf("%w: plugin %s declares %q", ErrUnknownSubscription, name, event)
	}
	return nil
}
