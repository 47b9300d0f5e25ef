package main

import (
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lucas/internal/app"
)

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var program *tea.Program
	ctrl := e.newController(func() {
		if program != nil {
			program.Send(app.ControllerUpdated())
		}
	})

	model := app.NewModel(ctrl, e.api)
	program = tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
