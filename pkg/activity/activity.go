// Package activity defines the wire shapes the runtime routes on: inbound
// activities, conversation references, outbound builders, and invoke
// responses.
package activity

import "time"

// Type discriminates the activity union. Kind-specific payload fields are
// only meaningful for the matching type; selectors must treat absent
// payloads as "no match", never as an error.
type Type string

const (
	TypeMessage            Type = "message"
	TypeMessageUpdate      Type = "messageUpdate"
	TypeMessageDelete      Type = "messageDelete"
	TypeMessageReaction    Type = "messageReaction"
	TypeConversationUpdate Type = "conversationUpdate"
	TypeInvoke             Type = "invoke"
	TypeEvent              Type = "event"
	TypeTyping             Type = "typing"
	TypeTrace              Type = "trace"
	TypeInstallUpdate      Type = "installationUpdate"
	TypeEndOfConversation  Type = "endOfConversation"
	TypeHandoff            Type = "handoff"
	TypeCommand            Type = "command"
)

// Account identifies a user or bot in a channel.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	TenantID  string `json:"tenantId,omitempty"`
	AADObject string `json:"aadObjectId,omitempty"`
}

// Conversation identifies the conversation an activity belongs to.
type Conversation struct {
	ID       string `json:"id"`
	Type     string `json:"conversationType,omitempty"`
	Name     string `json:"name,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// ChannelData carries channel-specific envelope data. It is optional on
// every activity kind.
type ChannelData struct {
	EventType string   `json:"eventType,omitempty"`
	Channel   *Channel `json:"channel,omitempty"`
	Team      *Team    `json:"team,omitempty"`
	TenantID  string   `json:"tenant,omitempty"`
}

// Channel is the channel referenced by a conversation-update event.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Team is the team referenced by a conversation-update event.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Reaction is a single message reaction.
type Reaction struct {
	Type string `json:"type"`
}

// Activity is one inbound or outbound event. Inbound activities are
// immutable once received; outbound ones are composed with the builders in
// this package.
type Activity struct {
	ID           string       `json:"id,omitempty"`
	Type         Type         `json:"type"`
	ChannelID    string       `json:"channelId,omitempty"`
	ServiceURL   string       `json:"serviceUrl,omitempty"`
	From         Account      `json:"from"`
	Recipient    Account      `json:"recipient"`
	Conversation Conversation `json:"conversation"`
	ReplyToID    string       `json:"replyToId,omitempty"`
	Locale       string       `json:"locale,omitempty"`
	Timestamp    time.Time    `json:"timestamp,omitempty"`

	// ChannelData is optional on every kind.
	ChannelData *ChannelData `json:"channelData,omitempty"`

	// Message payload.
	Text string `json:"text,omitempty"`

	// Invoke / event payload. Name discriminates the sub-kind; Value holds
	// the raw body, decoded on demand via DecodeValue.
	Name  string         `json:"name,omitempty"`
	Value map[string]any `json:"value,omitempty"`

	// Reaction payload.
	ReactionsAdded   []Reaction `json:"reactionsAdded,omitempty"`
	ReactionsRemoved []Reaction `json:"reactionsRemoved,omitempty"`

	// Conversation-update payload.
	MembersAdded   []Account `json:"membersAdded,omitempty"`
	MembersRemoved []Account `json:"membersRemoved,omitempty"`
}

// ConversationReference captures where a reply to an activity must be sent.
type ConversationReference struct {
	ActivityID   string       `json:"activityId,omitempty"`
	ChannelID    string       `json:"channelId,omitempty"`
	ServiceURL   string       `json:"serviceUrl,omitempty"`
	Locale       string       `json:"locale,omitempty"`
	Bot          Account      `json:"bot"`
	User         Account      `json:"user"`
	Conversation Conversation `json:"conversation"`
}

// Ref derives the conversation reference for replying to a.
func (a *Activity) Ref() ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Locale:       a.Locale,
		Bot:          a.Recipient,
		User:         a.From,
		Conversation: a.Conversation,
	}
}

// SentActivity is the transport's acknowledgement of a sent activity.
type SentActivity struct {
	ID string `json:"id"`
}
