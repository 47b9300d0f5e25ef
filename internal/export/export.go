// Package export serializes a chat transcript into downloadable
// documents.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"lucas/internal/types"
)

// Transcript is the exportable view of one session.
type Transcript struct {
	SessionID string          `json:"session_id" yaml:"session_id"`
	Title     string          `json:"title" yaml:"title"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Messages  []types.Message `json:"messages" yaml:"messages"`
}

// Exporter writes a transcript in one concrete format.
type Exporter interface {
	Export(t Transcript, w io.Writer) error
	Extension() string
}

// New returns the exporter for a format name.
func New(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, json, yaml)", format)
	}
}

// Filename derives the download name from the session title: every
// non-alphanumeric character becomes an underscore, the result is
// lower-cased, and an empty result falls back to "export".
func Filename(title, extension string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sanitized := strings.ToLower(b.String())
	if sanitized == "" {
		sanitized = "export"
	}
	return "lucas-ai-chat-" + sanitized + "." + extension
}
