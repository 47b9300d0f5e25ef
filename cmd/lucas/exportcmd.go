package main

import (
	"flag"
	"fmt"
	"os"

	"lucas/internal/export"
	"lucas/internal/types"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sessionID := fs.String("session", "", "session id (defaults to the most recent)")
	format := fs.String("format", "md", "output format: md, json, or yaml")
	out := fs.String("out", "", "output path (defaults to the derived filename)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exporter, err := export.New(*format)
	if err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sessions, err := e.store.LoadSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions to export")
	}

	var session *types.ChatSession
	if *sessionID == "" {
		session = &sessions[0]
	} else {
		for i := range sessions {
			if sessions[i].ID == *sessionID {
				session = &sessions[i]
				break
			}
		}
		if session == nil {
			return fmt.Errorf("unknown session: %s", *sessionID)
		}
	}

	messages, _, err := e.store.LoadMessages(session.ID)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = export.Filename(session.Title, exporter.Extension())
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	transcript := export.Transcript{
		SessionID: session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		Messages:  messages,
	}
	if err := exporter.Export(transcript, file); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
