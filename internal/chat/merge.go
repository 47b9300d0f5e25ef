package chat

import (
	"strings"

	"lucas/internal/types"
)

// Appended to the in-flight message when the stream reports a failure.
const errorBlockHeader = "\n\n**Error:**\n```\n"

// Appended exactly once when a stream ends with neither a terminal
// signal nor an error chunk.
const interruptionWarning = "\n\n---\n\n*The connection was interrupted, and the response may be incomplete. Please check your network and try sending your message again.*"

const (
	titleMaxLen  = 30
	titleKeepLen = 27
)

func errorBlock(errorText string) string {
	return errorBlockHeader + errorText + "\n```"
}

// deriveTitle turns the first user message into a session title,
// truncating long inputs to 27 characters plus an ellipsis marker.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleMaxLen {
		return string(runes[:titleKeepLen]) + "..."
	}
	return text
}

func historyFailureMessage() types.Message {
	return types.Message{
		ID:    types.NewID(),
		Role:  types.MessageRoleModel,
		Parts: []types.MessagePart{{Text: "Error: Could not load session history."}},
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
