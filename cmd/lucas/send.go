package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"lucas/internal/app"
	"lucas/internal/types"
)

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sessionID := fs.String("session", "", "target session id (defaults to the most recent)")
	imagePath := fs.String("image", "", "attach an image file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" && *imagePath == "" {
		return fmt.Errorf("usage: lucas send [--session id] [--image path] <message>")
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var image *types.ImagePayload
	if *imagePath != "" {
		image, err = app.LoadImagePayload(*imagePath)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	ctrl := e.newController(nil)
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	if *sessionID != "" {
		if err := ctrl.SelectSession(ctx, *sessionID); err != nil {
			return err
		}
	}
	if err := ctrl.SendMessage(ctx, text, image); err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		if snap.Messages[i].Role == types.MessageRoleModel {
			fmt.Println(snap.Messages[i].Text())
			return nil
		}
	}
	return nil
}
