package routing

import (
	"testing"

	"github.com/relaykit/relay/pkg/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(name string) Handler {
	return func(ctx *Context, next func() error) (any, error) {
		return name, nil
	}
}

func run(t *testing.T, handlers []Handler, a *activity.Activity) any {
	t.Helper()
	result, err := newChain(&Context{Activity: a}, handlers).run()
	require.NoError(t, err)
	return result
}

func TestRouter_SelectsByType(t *testing.T) {
	r := NewRouter().
		OnMessage(named("message")).
		OnActivity(activity.TypeTyping, named("typing"))

	assert.Equal(t, "message", run(t, r.SelectHandlers(activity.NewMessage("hi")), activity.NewMessage("hi")))
	assert.Equal(t, "typing", run(t, r.SelectHandlers(activity.NewTyping()), activity.NewTyping()))
}

func TestRouter_NoMatchYieldsEmptyChain(t *testing.T) {
	r := NewRouter().OnMessage(named("message"))

	handlers := r.SelectHandlers(&activity.Activity{Type: activity.TypeInvoke, Name: "task/fetch"})
	assert.Empty(t, handlers)
}

func TestRouter_ConcatenatesMatchesInDeclarationOrder(t *testing.T) {
	var order []string
	tap := func(name string) Handler {
		return func(ctx *Context, next func() error) (any, error) {
			order = append(order, name)
			return nil, next()
		}
	}

	r := NewRouter().
		OnMessage(tap("specific")).
		Use(tap("catchall"))

	a := activity.NewMessage("hi")
	handlers := r.SelectHandlers(a)
	require.Len(t, handlers, 2)

	_, err := newChain(&Context{Activity: a}, handlers).run()
	require.NoError(t, err)
	assert.Equal(t, []string{"specific", "catchall"}, order)
}

func TestRouter_FallbackRunsAfterSpecificRegardlessOfRegistrationOrder(t *testing.T) {
	var order []string
	tap := func(name string) Handler {
		return func(ctx *Context, next func() error) (any, error) {
			order = append(order, name)
			return nil, next()
		}
	}

	r := NewRouter().
		Use(tap("catchall")).
		OnMessage(tap("specific"))

	a := activity.NewMessage("hi")
	_, err := newChain(&Context{Activity: a}, r.SelectHandlers(a)).run()
	require.NoError(t, err)
	assert.Equal(t, []string{"specific", "catchall"}, order)
}

func TestRouter_ConversationEventRequiresChannelData(t *testing.T) {
	sel := ConversationEvent("membersAdded")

	bare := &activity.Activity{Type: activity.TypeConversationUpdate}
	assert.False(t, sel(bare), "missing channel data never matches")

	withData := &activity.Activity{
		Type:        activity.TypeConversationUpdate,
		ChannelData: &activity.ChannelData{EventType: "membersAdded"},
	}
	assert.True(t, sel(withData))

	otherEvent := &activity.Activity{
		Type:        activity.TypeConversationUpdate,
		ChannelData: &activity.ChannelData{EventType: "channelCreated"},
	}
	assert.False(t, sel(otherEvent))
}

func TestRouter_MessageEventMatchesEditsAndDeletes(t *testing.T) {
	sel := MessageEvent("editMessage")

	edit := &activity.Activity{
		Type:        activity.TypeMessageUpdate,
		ChannelData: &activity.ChannelData{EventType: "editMessage"},
	}
	assert.True(t, sel(edit))

	del := &activity.Activity{
		Type:        activity.TypeMessageDelete,
		ChannelData: &activity.ChannelData{EventType: "editMessage"},
	}
	assert.True(t, sel(del))

	assert.False(t, sel(&activity.Activity{Type: activity.TypeMessageUpdate}))
	assert.False(t, sel(activity.NewMessage("hi")))
}

func TestRouter_InvokeMatchesByName(t *testing.T) {
	r := NewRouter().
		OnInvoke("signin/tokenExchange", named("exchange")).
		OnInvoke("task/fetch", named("fetch"))

	a := &activity.Activity{Type: activity.TypeInvoke, Name: "task/fetch"}
	assert.Equal(t, "fetch", run(t, r.SelectHandlers(a), a))

	event := &activity.Activity{Type: activity.TypeEvent, Name: "task/fetch"}
	assert.Empty(t, r.SelectHandlers(event), "invoke selector ignores event activities")
}

func TestRouter_EventMatchesByName(t *testing.T) {
	r := NewRouter().OnEvent("metrics/flush", named("flush"))

	a := &activity.Activity{Type: activity.TypeEvent, Name: "metrics/flush"}
	assert.Equal(t, "flush", run(t, r.SelectHandlers(a), a))
}

func TestRouter_UseMatchesEverything(t *testing.T) {
	r := NewRouter().Use(named("any"))

	for _, a := range []*activity.Activity{
		activity.NewMessage("hi"),
		activity.NewTyping(),
		{Type: activity.TypeInvoke, Name: "whatever"},
	} {
		assert.Len(t, r.SelectHandlers(a), 1)
	}
}
