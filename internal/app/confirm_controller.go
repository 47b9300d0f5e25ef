package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmChoice int

const (
	confirmChoiceNone confirmChoice = iota
	confirmChoiceConfirm
	confirmChoiceCancel
)

const confirmMaxWidth = 60

// ConfirmController is the modal yes/no gate in front of session
// deletion.
type ConfirmController struct {
	active    bool
	title     string
	message   string
	sessionID string
	selected  int
}

func NewConfirmController() *ConfirmController {
	return &ConfirmController{}
}

func (c *ConfirmController) IsOpen() bool {
	return c != nil && c.active
}

func (c *ConfirmController) SessionID() string {
	if c == nil {
		return ""
	}
	return c.sessionID
}

func (c *ConfirmController) Open(title, message, sessionID string) {
	if c == nil {
		return
	}
	c.active = true
	c.title = strings.TrimSpace(title)
	c.message = strings.TrimSpace(message)
	c.sessionID = sessionID
	c.selected = 0
}

func (c *ConfirmController) Close() {
	if c == nil {
		return
	}
	c.active = false
	c.title = ""
	c.message = ""
	c.sessionID = ""
	c.selected = 0
}

func (c *ConfirmController) HandleKey(msg tea.KeyMsg) (bool, confirmChoice) {
	if c == nil || !c.active {
		return false, confirmChoiceNone
	}
	switch msg.String() {
	case "esc", "q":
		return true, confirmChoiceCancel
	case "left", "h":
		c.selected = 0
		return true, confirmChoiceNone
	case "right", "l":
		c.selected = 1
		return true, confirmChoiceNone
	case "tab":
		if c.selected == 0 {
			c.selected = 1
		} else {
			c.selected = 0
		}
		return true, confirmChoiceNone
	case "y":
		return true, confirmChoiceConfirm
	case "n":
		return true, confirmChoiceCancel
	case "enter":
		if c.selected == 0 {
			return true, confirmChoiceConfirm
		}
		return true, confirmChoiceCancel
	}
	return false, confirmChoiceNone
}

func (c *ConfirmController) View(width int) string {
	if c == nil || !c.active {
		return ""
	}
	boxWidth := confirmMaxWidth
	if width > 0 && width-4 < boxWidth {
		boxWidth = width - 4
	}

	confirmLabel := "[ Delete ]"
	cancelLabel := "[ Keep ]"
	if c.selected == 0 {
		confirmLabel = sessionSelectedStyle.Render(confirmLabel)
	} else {
		cancelLabel = sessionSelectedStyle.Render(cancelLabel)
	}

	body := c.title + "\n\n" + c.message + "\n\n" + confirmLabel + "  " + cancelLabel
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("203")).
		Padding(1, 2).
		Width(boxWidth).
		Render(body)
}
