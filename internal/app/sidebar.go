package app

import (
	"strings"
	"time"

	runewidth "github.com/mattn/go-runewidth"

	"lucas/internal/types"
)

const sidebarWidth = 28

// renderSidebar draws the session list, newest first, with the cursor
// row highlighted and the active session marked.
func renderSidebar(sessions []types.ChatSession, activeID string, cursor int, deletingID string, height int, now time.Time) string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Lucas AI"))
	b.WriteString("\n\n")

	rows := height - 3
	if rows < 1 {
		rows = 1
	}
	for i, session := range sessions {
		if i >= rows {
			break
		}
		marker := "  "
		if session.ID == activeID {
			marker = "* "
		}
		title := session.Title
		if session.ID == deletingID {
			title = "deleting..."
		}
		line := marker + truncateTitle(title, sidebarWidth-4)
		if i == cursor {
			line = sessionSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(sessionDateStyle.Render("   " + formatSessionDate(session.CreatedAt, now)))
		b.WriteString("\n")
	}
	return sidebarStyle.Width(sidebarWidth).Height(height).Render(b.String())
}

// truncateTitle clips by display width so wide runes do not overflow
// the column.
func truncateTitle(title string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(title) <= width {
		return title
	}
	return runewidth.Truncate(title, width, "…")
}
