package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/relaykit/relay/pkg/activity"
	"github.com/relaykit/relay/pkg/plugin"
)

// consoleTransport is the development transport: it prints outgoing
// activities to a writer and feeds typed lines into the runtime.
type consoleTransport struct {
	out      io.Writer
	dispatch plugin.ActivityDispatcher
}

func newConsoleTransport(out io.Writer) *consoleTransport {
	return &consoleTransport{out: out}
}

func (t *consoleTransport) Metadata() plugin.Metadata {
	return plugin.Metadata{Name: "console", Version: "0.1.0", Description: "stdin/stdout transport"}
}

func (t *consoleTransport) Dependencies() []plugin.Dependency { return nil }
func (t *consoleTransport) Subscriptions() []string           { return []string{"activity"} }
func (t *consoleTransport) OnInit(plugin.Resolved) error      { return nil }

func (t *consoleTransport) BindActivityEmitter(d plugin.ActivityDispatcher) {
	t.dispatch = d
}

// Deliver feeds one typed line into the runtime as a message activity.
func (t *consoleTransport) Deliver(ctx context.Context, text string) (*activity.Response, error) {
	a := activity.NewMessage(text)
	a.ChannelID = "console"
	a.From = activity.Account{ID: "console-user", Name: "you", Role: "user"}
	a.Recipient = activity.Account{ID: "console-bot", Name: "relay", Role: "bot"}
	a.Conversation = activity.Conversation{ID: "console"}

	if t.dispatch == nil {
		return nil, fmt.Errorf("console transport not injected")
	}
	return t.dispatch(ctx, plugin.ActivityEvent{Activity: a, Sender: t})
}

func (t *consoleTransport) Send(_ context.Context, a *activity.Activity, _ activity.ConversationReference) (*activity.SentActivity, error) {
	if a.Type == activity.TypeMessage && a.Text != "" {
		fmt.Fprintf(t.out, "[bot] %s\n", a.Text)
	}
	return &activity.SentActivity{ID: uuid.NewString()}, nil
}

func (t *consoleTransport) CreateStream(activity.ConversationReference) plugin.Streamer {
	return &consoleStream{out: t.out}
}

// consoleStream prints chunks as they arrive and a newline on close.
type consoleStream struct {
	out    io.Writer
	mu     sync.Mutex
	chunks []string
	closed bool
}

func (s *consoleStream) Emit(a *activity.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.chunks = append(s.chunks, a.Text)
	fmt.Fprint(s.out, a.Text)
}

func (s *consoleStream) Update(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		fmt.Fprintf(s.out, "[%s]\n", text)
	}
}

func (s *consoleStream) Close(context.Context) (*activity.SentActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil
	}
	s.closed = true
	if len(s.chunks) > 0 && !strings.HasSuffix(s.chunks[len(s.chunks)-1], "\n") {
		fmt.Fprintln(s.out)
	}
	return &activity.SentActivity{ID: uuid.NewString()}, nil
}

func (s *consoleStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
