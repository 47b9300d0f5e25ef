package chat

import (
	"bytes"

	"lucas/internal/export"
	"lucas/internal/types"
)

// ExportActiveSession serializes the active session's transcript. Pure
// and synchronous: no network, no store writes. The returned filename
// is derived from the session title.
func (c *Controller) ExportActiveSession(format string) (filename string, data []byte, err error) {
	exporter, err := export.New(format)
	if err != nil {
		return "", nil, err
	}

	c.mu.Lock()
	var session *types.ChatSession
	for i := range c.sessions {
		if c.sessions[i].ID == c.activeID {
			session = &c.sessions[i]
			break
		}
	}
	if session == nil {
		c.mu.Unlock()
		return "", nil, ErrNoActiveSession
	}
	transcript := export.Transcript{
		SessionID: session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		Messages:  types.CloneMessages(c.messages),
	}
	c.mu.Unlock()

	var buf bytes.Buffer
	if err := exporter.Export(transcript, &buf); err != nil {
		return "", nil, err
	}
	return export.Filename(transcript.Title, exporter.Extension()), buf.Bytes(), nil
}
