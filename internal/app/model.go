package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lucas/internal/chat"
	"lucas/internal/types"
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

type inputMode int

const (
	modeCompose inputMode = iota
	modeAttachPath
)

const statusLifetime = 4 * time.Second

// Model is the bubbletea root for the chat UI. Controller state is
// pulled into a snapshot on every repaint trigger; the model itself
// holds only view state.
type Model struct {
	ctrl   *chat.Controller
	prober Prober

	snap       chat.Snapshot
	transcript *transcriptRenderer
	confirm    *ConfirmController

	input     textinput.Model
	pathInput textinput.Model
	mode      inputMode
	attached  *types.ImagePayload

	focus       focusArea
	cursor      int
	promptCycle int

	width  int
	height int

	status    string
	statusErr bool
	statusSeq int

	quitting bool
}

func NewModel(ctrl *chat.Controller, prober Prober) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about a trading strategy..."
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/chart.png"
	pathInput.Prompt = "attach image: "

	return &Model{
		ctrl:       ctrl,
		prober:     prober,
		transcript: newTranscriptRenderer(72),
		confirm:    NewConfirmController(),
		input:      input,
		pathInput:  pathInput,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(startControllerCmd(m.ctrl), probeCmd(m.prober), probeTickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript = newTranscriptRenderer(m.transcriptWidth())
		m.input.Width = m.transcriptWidth() - 4
		m.pathInput.Width = m.transcriptWidth() - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case controllerUpdatedMsg:
		m.refresh()
		return m, nil

	case startedMsg:
		m.refresh()
		if msg.err != nil {
			return m, m.setStatusError("startup failed: " + msg.err.Error())
		}
		return m, nil

	case sendFinishedMsg:
		m.refresh()
		if msg.err != nil {
			return m, m.setStatusError(sendErrorText(msg.err))
		}
		return m, nil

	case sessionCreatedMsg:
		m.refresh()
		m.cursor = 0
		if msg.err != nil {
			return m, m.setStatusError("could not create chat: " + msg.err.Error())
		}
		return m, nil

	case sessionDeletedMsg:
		m.refresh()
		if m.cursor >= len(m.snap.Sessions) && m.cursor > 0 {
			m.cursor = len(m.snap.Sessions) - 1
		}
		if msg.err != nil {
			return m, m.setStatusError("could not delete chat: " + msg.err.Error())
		}
		return m, m.setStatusInfo("chat deleted")

	case probeTickMsg:
		return m, tea.Batch(probeCmd(m.prober), probeTickCmd())

	case connectivityMsg:
		m.ctrl.SetOffline(msg.offline)
		m.refresh()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setStatusError("export failed: " + msg.err.Error())
		}
		return m, m.setStatusInfo("exported to " + msg.path)

	case imageAttachedMsg:
		if msg.err != nil {
			return m, m.setStatusError("attach failed: " + msg.err.Error())
		}
		return m, m.setStatusInfo("attached " + msg.name)

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}
	return m, m.updateInputs(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm.IsOpen() {
		handled, choice := m.confirm.HandleKey(msg)
		if !handled {
			return m, nil
		}
		switch choice {
		case confirmChoiceConfirm:
			id := m.confirm.SessionID()
			m.confirm.Close()
			return m, deleteSessionCmd(m.ctrl, id)
		case confirmChoiceCancel:
			m.confirm.Close()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		if m.mode == modeCompose {
			m.toggleFocus()
			return m, nil
		}
	case "esc":
		if m.mode == modeAttachPath {
			m.mode = modeCompose
			m.pathInput.Reset()
			m.pathInput.Blur()
			m.input.Focus()
			return m, nil
		}
		if m.focus == focusSidebar {
			m.toggleFocus()
			return m, nil
		}
	case "ctrl+n":
		return m, createSessionCmd(m.ctrl)
	case "ctrl+e":
		return m, exportSessionCmd(m.ctrl, "md")
	case "ctrl+o":
		if m.mode == modeCompose {
			m.mode = modeAttachPath
			m.input.Blur()
			m.pathInput.Focus()
			return m, nil
		}
	case "ctrl+y":
		return m, m.copyLastReply()
	case "ctrl+t":
		if m.mode == modeCompose && len(m.snap.Messages) == 0 {
			m.input.SetValue(examplePrompts[m.promptCycle%len(examplePrompts)])
			m.promptCycle++
			m.input.CursorEnd()
			return m, nil
		}
	}

	if m.focus == focusSidebar && m.mode == modeCompose {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Sessions)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.snap.Sessions) {
			id := m.snap.Sessions[m.cursor].ID
			m.toggleFocus()
			return m, selectSessionCmd(m.ctrl, id)
		}
	case "d", "delete":
		if m.cursor < len(m.snap.Sessions) {
			session := m.snap.Sessions[m.cursor]
			m.confirm.Open("Delete chat", fmt.Sprintf("Are you sure you want to delete %q?", session.Title), session.ID)
		}
	}
	return m, nil
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if m.mode == modeAttachPath {
			path := m.pathInput.Value()
			m.mode = modeCompose
			m.pathInput.Reset()
			m.pathInput.Blur()
			m.input.Focus()
			payload, err := LoadImagePayload(path)
			if err != nil {
				return m, func() tea.Msg { return imageAttachedMsg{err: err} }
			}
			m.attached = payload
			return m, func() tea.Msg { return imageAttachedMsg{name: payload.DisplayName} }
		}
		text := m.input.Value()
		image := m.attached
		if strings.TrimSpace(text) == "" && image == nil {
			return m, nil
		}
		m.input.Reset()
		m.attached = nil
		return m, sendMessageCmd(m.ctrl, text, image)
	}
	return m, m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.mode == modeAttachPath {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	sidebar := renderSidebar(m.snap.Sessions, m.snap.ActiveID, m.cursor, m.snap.DeletingID, m.height-1, time.Now())
	main := m.renderMain()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	if m.confirm.IsOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View(m.width))
	}
	return body
}

func (m *Model) renderMain() string {
	var sections []string

	if m.snap.Offline {
		sections = append(sections, offlineBannerStyle.Render("You appear to be offline. Messages cannot be sent."))
	}
	if m.snap.LoadingHistory {
		sections = append(sections, promptHintStyle.Render("loading history..."))
	} else {
		sections = append(sections, m.transcript.Render(m.snap.Messages))
	}
	if steps := renderSteps(m.snap.Steps); steps != "" {
		sections = append(sections, steps)
	}
	if m.attached != nil {
		sections = append(sections, promptHintStyle.Render("[attached: "+m.attached.DisplayName+"]"))
	}
	if m.mode == modeAttachPath {
		sections = append(sections, m.pathInput.View())
	} else {
		sections = append(sections, m.input.View())
	}
	if m.status != "" {
		style := statusInfoStyle
		if m.statusErr {
			style = statusErrorStyle
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, helpStyle.Render(m.helpLine()))

	return lipgloss.NewStyle().
		Width(m.transcriptWidth()).
		PaddingLeft(1).
		Render(strings.Join(sections, "\n\n"))
}

func (m *Model) helpLine() string {
	if m.focus == focusSidebar {
		return "↑/↓ move · enter open · d delete · tab compose · ctrl+c quit"
	}
	return "enter send · tab sessions · ctrl+n new · ctrl+o image · ctrl+e export · ctrl+y copy · ctrl+c quit"
}

func (m *Model) transcriptWidth() int {
	width := m.width - sidebarWidth - 2
	if width < 20 {
		width = 20
	}
	return width
}

func (m *Model) toggleFocus() {
	if m.focus == focusComposer {
		m.focus = focusSidebar
		m.input.Blur()
		m.syncCursorToActive()
	} else {
		m.focus = focusComposer
		m.input.Focus()
	}
}

func (m *Model) syncCursorToActive() {
	for i, session := range m.snap.Sessions {
		if session.ID == m.snap.ActiveID {
			m.cursor = i
			return
		}
	}
	m.cursor = 0
}

func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
}

func (m *Model) copyLastReply() tea.Cmd {
	for i := len(m.snap.Messages) - 1; i >= 0; i-- {
		if m.snap.Messages[i].Role == types.MessageRoleModel {
			text := m.snap.Messages[i].Text()
			if text == "" {
				break
			}
			if _, err := copyTextToClipboard(text); err != nil {
				return m.setStatusError("copy failed: " + err.Error())
			}
			return m.setStatusInfo("reply copied")
		}
	}
	return m.setStatusError("nothing to copy")
}

func (m *Model) setStatusInfo(text string) tea.Cmd {
	m.status = text
	m.statusErr = false
	m.statusSeq++
	return statusExpiryCmd(m.statusSeq, statusLifetime)
}

func (m *Model) setStatusError(text string) tea.Cmd {
	m.status = text
	m.statusErr = true
	m.statusSeq++
	return statusExpiryCmd(m.statusSeq, statusLifetime)
}

func sendErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrOffline):
		return "you are offline; reconnect and try again"
	case errors.Is(err, chat.ErrStreamInFlight):
		return "wait for the current response to finish"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "type a message first"
	default:
		return "send failed: " + err.Error()
	}
}
