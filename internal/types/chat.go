package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleModel MessageRole = "model"
)

// ChatSession is the sidebar-level record for one conversation thread.
// The message history lives separately, keyed by the session id.
type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// ImagePayload is a base64-encoded inline attachment.
type ImagePayload struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Data        string `json:"data" yaml:"data"`
	MimeType    string `json:"mime_type" yaml:"mime_type"`
}

// MessagePart is either a text fragment or an inline-data attachment.
// Exactly one of the two fields is set.
type MessagePart struct {
	Text       string        `json:"text,omitempty" yaml:"text,omitempty"`
	InlineData *ImagePayload `json:"inlineData,omitempty" yaml:"inline_data,omitempty"`
}

type Message struct {
	ID    string        `json:"id" yaml:"id"`
	Role  MessageRole   `json:"role" yaml:"role"`
	Parts []MessagePart `json:"parts" yaml:"parts"`
}

func NewID() string {
	return uuid.NewString()
}

// NewModelPlaceholder returns the empty model message that is mutated in
// place while a response streams in.
func NewModelPlaceholder() Message {
	return Message{
		ID:    NewID(),
		Role:  MessageRoleModel,
		Parts: []MessagePart{{Text: ""}},
	}
}

// Text concatenates the message's text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, part := range m.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// EnsureMessageIDs backfills ids on messages that arrived without one
// (server history events carry no client-side ids).
func EnsureMessageIDs(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		if msg.ID == "" {
			msg.ID = NewID()
		}
		out[i] = msg
	}
	return out
}

func CloneMessage(msg Message) Message {
	out := msg
	out.Parts = make([]MessagePart, len(msg.Parts))
	for i, part := range msg.Parts {
		out.Parts[i] = part
		if part.InlineData != nil {
			data := *part.InlineData
			out.Parts[i].InlineData = &data
		}
	}
	return out
}

func CloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		out[i] = CloneMessage(msg)
	}
	return out
}

func CloneSessions(sessions []ChatSession) []ChatSession {
	out := make([]ChatSession, len(sessions))
	copy(out, sessions)
	return out
}
