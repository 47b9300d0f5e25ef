package app

import tea "github.com/charmbracelet/bubbletea"

// controllerUpdatedMsg fires whenever the controller mutates state the
// UI should repaint.
type controllerUpdatedMsg struct{}

// ControllerUpdated is the message the controller's notify hook sends
// through the running program.
func ControllerUpdated() tea.Msg {
	return controllerUpdatedMsg{}
}

type startedMsg struct {
	err error
}

type sendFinishedMsg struct {
	err error
}

type sessionCreatedMsg struct {
	err error
}

type sessionDeletedMsg struct {
	id  string
	err error
}

type connectivityMsg struct {
	offline bool
}

type exportDoneMsg struct {
	path string
	err  error
}

type imageAttachedMsg struct {
	name string
	err  error
}

type statusExpiredMsg struct {
	seq int
}
