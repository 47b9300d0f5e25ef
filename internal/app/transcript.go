package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"lucas/internal/types"
)

var examplePrompts = []string{
	"Backtest a simple moving average crossover on TSLA",
	"What's the Sharpe ratio for a MACD strategy on AAPL?",
	"Run a RSI strategy on BTC/USD for the last 5 years",
}

type transcriptRenderer struct {
	markdown *glamour.TermRenderer
	width    int
}

func newTranscriptRenderer(width int) *transcriptRenderer {
	r := &transcriptRenderer{width: width}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.markdown = renderer
	}
	return r
}

// Render draws the message list. Model replies go through the markdown
// renderer; user messages stay verbatim.
func (r *transcriptRenderer) Render(messages []types.Message) string {
	if len(messages) == 0 {
		return r.renderEmptyChat()
	}
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, r.renderMessage(msg))
	}
	return strings.Join(blocks, "\n")
}

func (r *transcriptRenderer) renderMessage(msg types.Message) string {
	label := modelLabelStyle.Render("Lucas AI")
	if msg.Role == types.MessageRoleUser {
		label = userLabelStyle.Render("You")
	}

	parts := make([]string, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch {
		case part.InlineData != nil:
			parts = append(parts, fmt.Sprintf("[Image: %s]", part.InlineData.DisplayName))
		case part.Text != "":
			parts = append(parts, part.Text)
		}
	}
	body := strings.Join(parts, "\n\n")

	if msg.Role == types.MessageRoleModel && r.markdown != nil && body != "" {
		if rendered, err := r.markdown.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	return label + "\n" + body + "\n"
}

func (r *transcriptRenderer) renderEmptyChat() string {
	var b strings.Builder
	b.WriteString("Welcome to Lucas AI\n")
	b.WriteString("Your conversational trading-backtest assistant.\n\n")
	b.WriteString(promptHintStyle.Render("Try one of these:"))
	b.WriteString("\n")
	for i, prompt := range examplePrompts {
		b.WriteString(promptHintStyle.Render(fmt.Sprintf("  %d. %s", i+1, prompt)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSteps draws the thinking pipeline shown while a response
// streams in. Empty when no send is in progress.
func renderSteps(steps []types.Step) string {
	if len(steps) == 0 {
		return ""
	}
	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		var line string
		switch step.Status {
		case types.StepActive:
			line = stepActiveStyle.Render("◐ " + step.Name)
		case types.StepCompleted:
			line = stepCompletedStyle.Render("● " + step.Name)
		case types.StepError:
			line = stepErrorStyle.Render("✗ " + step.Name)
		default:
			line = stepPendingStyle.Render("○ " + step.Name)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
