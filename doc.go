/*
Package relay is an activity-processing runtime for conversational bots. It
routes inbound activities through middleware-style handler chains, manages
bot and per-tenant graph tokens, and hosts transport and feature plugins
behind a dependency-injecting container.

# Concept

Relay treats a bot as a pipeline: a transport plugin feeds activities into
the App, the router selects every handler chain whose selector matches, and
the chain runs with a shared per-activity Context. Handlers reply through
the transport's Sender, stream partial output through a Streamer, and decide
the wire response by their return values. Everything that happens along the
way is published on an in-process event bus that plugins can observe.

# Key Features

  - Middleware routing: registration order is dispatch order; a handler
    short-circuits by not calling Next, and the outermost non-nil return
    decides the response.
  - Plugin container: declared dependencies resolved at startup, so a
    misconfigured plugin set fails before the first activity arrives.
  - Token management: the bot token and tenant-scoped graph tokens are
    cached with expiry awareness, backed by an in-memory LRU or Redis.
  - Bounded retries: exponential backoff with configurable jitter for
    transient failures.

# Usage

Construct an App with options, register routes, and start it:

	app, err := relay.New(
		relay.WithLogger(logger),
		relay.WithCredentials(creds),
		relay.WithPlugins(transport),
	)
	if err != nil {
		log.Fatal(err)
	}

	app.OnMessage(func(ctx *routing.Context, next func() error) (any, error) {
		_, err := ctx.Reply("hello, " + ctx.Activity.From.Name)
		return nil, err
	})

	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer app.Stop(ctx)
*/
package relay
