package app

import (
	"fmt"
	"time"
)

// formatSessionDate renders a session's creation time as a day bucket
// for the sidebar.
func formatSessionDate(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	dayStart := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	days := int(dayStart(now).Sub(dayStart(createdAt.In(now.Location()))).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return createdAt.Format("Jan 2, 2006")
	}
}
