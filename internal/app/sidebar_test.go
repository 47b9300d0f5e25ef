package app

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"lucas/internal/types"
)

func TestTruncateTitle(t *testing.T) {
	cases := []struct {
		title string
		width int
		want  string
	}{
		{"Short", 24, "Short"},
		{"A title that is far too long for the sidebar", 12, "A title tha…"},
		{"日本語のタイトルです", 8, "日本語…"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := truncateTitle(tc.title, tc.width); got != tc.want {
			t.Errorf("truncateTitle(%q, %d) = %q, want %q", tc.title, tc.width, got, tc.want)
		}
	}
}

func TestSidebarMarksActiveSession(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	sessions := []types.ChatSession{
		{ID: "s-1", Title: "First chat", CreatedAt: now},
		{ID: "s-2", Title: "Second chat", CreatedAt: now.Add(-24 * time.Hour)},
	}
	out := xansi.Strip(renderSidebar(sessions, "s-2", 0, "", 20, now))
	if !strings.Contains(out, "* Second chat") {
		t.Fatalf("active session not marked:\n%s", out)
	}
	if !strings.Contains(out, "  First chat") {
		t.Fatalf("inactive session mis-marked:\n%s", out)
	}
	if !strings.Contains(out, "Yesterday") {
		t.Fatalf("date bucket missing:\n%s", out)
	}
}

func TestSidebarShowsDeletionInProgress(t *testing.T) {
	now := time.Now()
	sessions := []types.ChatSession{{ID: "s-1", Title: "Doomed", CreatedAt: now}}
	out := xansi.Strip(renderSidebar(sessions, "s-1", 0, "s-1", 20, now))
	if !strings.Contains(out, "deleting...") {
		t.Fatalf("deletion state not shown:\n%s", out)
	}
}
