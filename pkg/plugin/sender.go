package plugin

import (
	"context"

	"github.com/relaykit/relay/pkg/activity"
)

// Sender is a component that can transmit outgoing activities. Transport
// plugins implement it; the processor uses it to send replies and to open
// streams.
type Sender interface {
	// Send transmits the activity to the conversation.
	Send(ctx context.Context, a *activity.Activity, ref activity.ConversationReference) (*activity.SentActivity, error)

	// CreateStream opens an incremental-emit handle for the conversation.
	CreateStream(ref activity.ConversationReference) Streamer
}

// Streamer sends incremental chunks of an activity before the final
// response. Close must be called exactly once per activity, regardless of
// which code path exits the handler chain.
type Streamer interface {
	// Emit queues an activity chunk.
	Emit(a *activity.Activity)

	// Update sends a status line ahead of the streamed content.
	Update(text string)

	// Close flushes and finalizes the stream.
	Close(ctx context.Context) (*activity.SentActivity, error)

	// Closed reports whether the final stream message has been sent.
	Closed() bool
}
