package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"lucas/internal/types"
)

func runSessions(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
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

	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tCREATED\tTITLE")
	for _, session := range sessions {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", session.ID, session.CreatedAt.Format("2006-01-02 15:04"), session.Title)
	}
	return writer.Flush()
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	id := types.NewID()
	if _, err := e.api.CreateSession(ctx, id); err != nil {
		return err
	}

	sessions, err := e.store.LoadSessions()
	if err != nil {
		return err
	}
	sessions = append([]types.ChatSession{{ID: id, Title: "New Chat", CreatedAt: time.Now()}}, sessions...)
	if err := e.store.SaveSessions(sessions); err != nil {
		return err
	}
	if err := e.store.SaveMessages(id, []types.Message{}); err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lucas delete [--yes] <session-id>")
	}
	id := fs.Arg(0)

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sessions, err := e.store.LoadSessions()
	if err != nil {
		return err
	}
	found := false
	for _, session := range sessions {
		if session.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown session: %s", id)
	}

	if !*yes && !promptYesNo("Are you sure you want to delete this chat?") {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.api.DeleteSession(ctx, id); err != nil {
		return err
	}

	kept := sessions[:0:0]
	for _, session := range sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	if err := e.store.SaveSessions(kept); err != nil {
		return err
	}
	if err := e.store.DeleteMessages(id); err != nil {
		return err
	}
	fmt.Println("deleted", id)
	return nil
}

func promptYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
