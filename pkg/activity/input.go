package activity

import (
	"time"

	"github.com/google/uuid"
)

// NewMessage builds an outbound message activity.
func NewMessage(text string) *Activity {
	a := newOutbound(TypeMessage)
	a.Text = text
	return a
}

// NewTyping builds an outbound typing indicator.
func NewTyping() *Activity {
	return newOutbound(TypeTyping)
}

// NewTrace builds an outbound trace activity with the given label payload.
func NewTrace(name string, value map[string]any) *Activity {
	a := newOutbound(TypeTrace)
	a.Name = name
	a.Value = value
	return a
}

// NewEvent builds an outbound named event activity.
func NewEvent(name string, value map[string]any) *Activity {
	a := newOutbound(TypeEvent)
	a.Name = name
	a.Value = value
	return a
}

func newOutbound(t Type) *Activity {
	return &Activity{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// InReplyTo stamps the reply target and returns the activity for chaining.
func (a *Activity) InReplyTo(ref ConversationReference) *Activity {
	a.ReplyToID = ref.ActivityID
	a.ChannelID = ref.ChannelID
	a.ServiceURL = ref.ServiceURL
	a.Conversation = ref.Conversation
	a.From = ref.Bot
	a.Recipient = ref.User
	a.Locale = ref.Locale
	return a
}
