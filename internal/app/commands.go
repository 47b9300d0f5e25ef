package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lucas/internal/chat"
	"lucas/internal/types"
)

// Prober reports backend reachability. *client.Client satisfies it.
type Prober interface {
	Probe(ctx context.Context) error
}

const probeInterval = 15 * time.Second

func startControllerCmd(ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return startedMsg{err: ctrl.Start(ctx)}
	}
}

func sendMessageCmd(ctrl *chat.Controller, text string, image *types.ImagePayload) tea.Cmd {
	return func() tea.Msg {
		// No timeout: the stream runs until the server closes it.
		return sendFinishedMsg{err: ctrl.SendMessage(context.Background(), text, image)}
	}
}

func createSessionCmd(ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sessionCreatedMsg{err: ctrl.CreateSession(ctx)}
	}
}

func selectSessionCmd(ctrl *chat.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = ctrl.SelectSession(ctx, id)
		return controllerUpdatedMsg{}
	}
}

// deleteSessionCmd runs the controller delete with the confirmation
// gate already satisfied by the modal.
func deleteSessionCmd(ctrl *chat.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := ctrl.DeleteSession(ctx, id, chat.ConfirmFunc(func(string) bool { return true }))
		return sessionDeletedMsg{id: id, err: err}
	}
}

func probeCmd(prober Prober) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return connectivityMsg{offline: prober.Probe(ctx) != nil}
	}
}

func probeTickCmd() tea.Cmd {
	return tea.Tick(probeInterval, func(time.Time) tea.Msg {
		return probeTickMsg{}
	})
}

type probeTickMsg struct{}

func exportSessionCmd(ctrl *chat.Controller, format string) tea.Cmd {
	return func() tea.Msg {
		filename, data, err := ctrl.ExportActiveSession(format)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		dir, err := os.Getwd()
		if err != nil {
			dir = os.TempDir()
		}
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func statusExpiryCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}
