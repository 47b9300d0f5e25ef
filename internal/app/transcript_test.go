package app

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"

	"lucas/internal/types"
)

func TestRenderStepsStatuses(t *testing.T) {
	steps := []types.Step{
		{Name: "Analyzing Request", Status: types.StepCompleted},
		{Name: "Retrieving Market Data", Status: types.StepActive},
		{Name: "Generating Backtest Script", Status: types.StepPending},
		{Name: "Running Simulation", Status: types.StepError},
	}
	out := xansi.Strip(renderSteps(steps))
	for _, want := range []string{
		"● Analyzing Request",
		"◐ Retrieving Market Data",
		"○ Generating Backtest Script",
		"✗ Running Simulation",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderStepsEmpty(t *testing.T) {
	if out := renderSteps(nil); out != "" {
		t.Fatalf("empty steps rendered %q", out)
	}
}

func TestRenderMessageImagePlaceholder(t *testing.T) {
	r := &transcriptRenderer{width: 60}
	msg := types.Message{
		ID:   "m-1",
		Role: types.MessageRoleUser,
		Parts: []types.MessagePart{
			{Text: "Look at this chart"},
			{InlineData: &types.ImagePayload{DisplayName: "tsla.png"}},
		},
	}
	out := xansi.Strip(r.renderMessage(msg))
	if !strings.Contains(out, "You") {
		t.Fatalf("author label missing:\n%s", out)
	}
	if !strings.Contains(out, "[Image: tsla.png]") {
		t.Fatalf("image placeholder missing:\n%s", out)
	}
}

func TestEmptyChatListsExamplePrompts(t *testing.T) {
	r := &transcriptRenderer{width: 80}
	out := xansi.Strip(r.Render(nil))
	for _, prompt := range examplePrompts {
		if !strings.Contains(out, prompt) {
			t.Fatalf("example prompt %q missing:\n%s", prompt, out)
		}
	}
}
