package export

import (
	"fmt"
	"io"
	"strings"

	"lucas/internal/types"
)

// MarkdownExporter renders the transcript as a markdown document: a
// title header, then each message under its author label, separated by
// horizontal rules. Inline attachments render as a bracketed
// placeholder with the display name.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(t Transcript, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Chat: %s\n\n---\n\n", t.Title); err != nil {
		return err
	}
	blocks := make([]string, 0, len(t.Messages))
	for _, msg := range t.Messages {
		blocks = append(blocks, formatMessage(msg))
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n---\n\n"))
	return err
}

func formatMessage(msg types.Message) string {
	author := "Lucas AI"
	if msg.Role == types.MessageRoleUser {
		author = "You"
	}
	parts := make([]string, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch {
		case part.Text != "":
			parts = append(parts, part.Text)
		case part.InlineData != nil:
			parts = append(parts, fmt.Sprintf("[Image: %s]", part.InlineData.DisplayName))
		default:
			parts = append(parts, "")
		}
	}
	return fmt.Sprintf("**%s:**\n\n%s", author, strings.Join(parts, "\n\n"))
}

func (e *MarkdownExporter) Extension() string { return "md" }
