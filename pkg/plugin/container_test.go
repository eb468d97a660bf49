package plugin_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/bus"
	"github.com/relaykit/relay/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPlugin is a configurable plugin for container tests.
type testPlugin struct {
	meta     plugin.Metadata
	deps     []plugin.Dependency
	subs     []string
	resolved plugin.Resolved
	initErr  error

	dispatch   plugin.ActivityDispatcher
	emitError  func(plugin.ErrorEvent)
	emitCustom func(string, any)
}

func (p *testPlugin) Metadata() plugin.Metadata         { return p.meta }
func (p *testPlugin) Dependencies() []plugin.Dependency { return p.deps }
func (p *testPlugin) Subscriptions() []string           { return p.subs }
func (p *testPlugin) OnInit(deps plugin.Resolved) error { p.resolved = deps; return p.initErr }

func (p *testPlugin) BindActivityEmitter(d plugin.ActivityDispatcher) { p.dispatch = d }
func (p *testPlugin) BindErrorEmitter(f func(plugin.ErrorEvent))      { p.emitError = f }
func (p *testPlugin) BindCustomEmitter(f func(string, any))           { p.emitCustom = f }

func newPlugin(name string) *testPlugin {
	return &testPlugin{meta: plugin.Metadata{Name: name, Version: "1.0.0"}}
}

func TestRegister_DuplicateNameIsFatal(t *testing.T) {
	c := plugin.NewContainer(bus.New())

	require.NoError(t, c.Register(newPlugin("echo")))
	err := c.Register(newPlugin("echo"))
	assert.ErrorIs(t, err, plugin.ErrDuplicatePlugin)
}

func TestRegister_MissingNameIsFatal(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	err := c.Register(&testPlugin{})
	assert.ErrorIs(t, err, plugin.ErrMissingName)
}

func TestGet_ReturnsRegisteredPlugin(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	p := newPlugin("echo")

	require.NoError(t, c.Register(p))
	assert.Equal(t, p, c.Get("echo"))
	assert.Nil(t, c.Get("missing"))
}

func TestInject_ResolvesDeclaredDependencies(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	logger := slog.Default()
	c.SetProvider("logger", logger)

	p := newPlugin("echo")
	p.deps = []plugin.Dependency{
		{Name: "logger"},
		{Name: "storage", Optional: true},
	}

	require.NoError(t, c.Register(p))
	require.NoError(t, c.Inject(p))

	got, ok := p.resolved.Get("logger")
	require.True(t, ok)
	assert.Equal(t, logger, got)

	_, ok = p.resolved.Get("storage")
	assert.False(t, ok, "missing optional dependency leaves the slot unset")
}

func TestInject_MissingRequiredDependencyIsFatal(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	p := newPlugin("echo")
	p.deps = []plugin.Dependency{{Name: "storage"}}

	require.NoError(t, c.Register(p))
	err := c.Inject(p)
	assert.ErrorIs(t, err, plugin.ErrMissingDependency)
	assert.Nil(t, p.resolved, "OnInit must not run on configuration failure")
}

func TestInject_PluginsResolveEachOther(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	first := newPlugin("storage")
	second := newPlugin("consumer")
	second.deps = []plugin.Dependency{{Name: "storage"}}

	require.NoError(t, c.Register(first, second))
	require.NoError(t, c.Inject(second))

	got, ok := second.resolved.Get("storage")
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestInject_UnknownSubscriptionIsFatal(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	p := newPlugin("echo")
	p.subs = []string{"mystery"}

	require.NoError(t, c.Register(p))
	assert.ErrorIs(t, c.Inject(p), plugin.ErrUnknownSubscription)
}

func TestInject_BindsActivityDispatch(t *testing.T) {
	b := bus.New()
	c := plugin.NewContainer(b)

	var dispatched *plugin.ActivityEvent
	c.SetActivityDispatcher(func(_ context.Context, ev plugin.ActivityEvent) (*activity.Response, error) {
		dispatched = &ev
		return activity.OK("handled"), nil
	})

	var published int
	b.Subscribe("activity", func(any) { published++ })

	p := newPlugin("transport")
	p.subs = []string{"activity"}
	require.NoError(t, c.Register(p))
	require.NoError(t, c.Inject(p))
	require.NotNil(t, p.dispatch)

	in := activity.NewMessage("hi")
	res, err := p.dispatch(context.Background(), plugin.ActivityEvent{Activity: in})
	require.NoError(t, err)

	assert.Equal(t, "handled", res.Body)
	assert.Equal(t, in, dispatched.Activity)
	assert.Equal(t, 1, published, "dispatch publishes the activity event on the bus")
}

func TestInject_ActivityDispatchWithoutSinkFails(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	p := newPlugin("transport")
	p.subs = []string{"activity"}

	require.NoError(t, c.Register(p))
	require.NoError(t, c.Inject(p))

	_, err := p.dispatch(context.Background(), plugin.ActivityEvent{})
	assert.ErrorIs(t, err, plugin.ErrNoDispatcher)
}

func TestInject_BindsErrorEmitter(t *testing.T) {
	b := bus.New()
	c := plugin.NewContainer(b)

	var got []plugin.ErrorEvent
	b.Subscribe("error", func(p any) {
		if ev, ok := p.(plugin.ErrorEvent); ok {
			got = append(got, ev)
		}
	})

	p := newPlugin("watcher")
	p.subs = []string{"error"}
	require.NoError(t, c.Register(p))
	require.NoError(t, c.Inject(p))
	require.NotNil(t, p.emitError)

	p.emitError(plugin.ErrorEvent{Context: map[string]any{"source": "watcher"}})
	require.Len(t, got, 1)
	assert.Equal(t, "watcher", got[0].Context["source"])
}

func TestInject_CustomEmitterRefusesReservedEvents(t *testing.T) {
	b := bus.New()
	c := plugin.NewContainer(b)

	reservedSeen := 0
	b.Subscribe("activity", func(any) { reservedSeen++ })
	customSeen := 0
	b.Subscribe("metrics-flushed", func(any) { customSeen++ })

	p := newPlugin("metrics")
	p.subs = []string{"custom"}
	require.NoError(t, c.Register(p))
	require.NoError(t, c.Inject(p))
	require.NotNil(t, p.emitCustom)

	p.emitCustom("activity", nil)
	p.emitCustom("metrics-flushed", nil)

	assert.Zero(t, reservedSeen, "reserved topics are refused")
	assert.Equal(t, 1, customSeen)
}

func TestInject_SubscriptionWithoutBinderIsFatal(t *testing.T) {
	c := plugin.NewContainer(bus.New())
	p := &noBinderPlugin{}
	require.NoError(t, c.Register(p))
	assert.ErrorIs(t, c.Inject(p), plugin.ErrNotBindable)
}

type noBinderPlugin struct{}

func (p *noBinderPlugin) Metadata() plugin.Metadata         { return plugin.Metadata{Name: "no-binder"} }
func (p *noBinderPlugin) Dependencies() []plugin.Dependency { return nil }
func (p *noBinderPlugin) Subscriptions() []string           { return []string{"activity"} }
func (p *noBinderPlugin) OnInit(plugin.Resolved) error      { return nil }

func TestEndToEnd_MissingDependencyFailsBeforeProcessing(t *testing.T) {
	c := plugin.NewContainer(bus.New())

	healthy := newPlugin("healthy")
	broken := newPlugin("broken")
	broken.deps = []plugin.Dependency{{Name: "does-not-exist"}}

	require.NoError(t, c.Register(healthy, broken))

	var err error
	for _, p := range c.Plugins() {
		if injectErr := c.Inject(p); injectErr != nil {
			err = injectErr
			break
		}
	}

	assert.ErrorIs(t, err, plugin.ErrMissingDependency,
		"startup must fail before any activity is processed")
}
