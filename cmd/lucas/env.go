package main

import (
	"fmt"
	"os"

	"lucas/internal/auth"
	"lucas/internal/chat"
	"lucas/internal/client"
	"lucas/internal/config"
	"lucas/internal/logging"
	"lucas/internal/store"
)

// env bundles the wired components every command needs.
type env struct {
	cfg      config.Config
	log      logging.Logger
	identity auth.Identity
	api      *client.Client
	store    store.SessionStore
}

func buildEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	identity := auth.NewHTTPIdentity(cfg.AuthBaseURL(), cfg.AuthAnonKey(), tokenPath)
	api := client.New(cfg.BackendBaseURL(), auth.IdentityTokenSource{Identity: identity}, log)

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}
	st, err := store.NewBboltSessionStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &env{cfg: cfg, log: log, identity: identity, api: api, store: st}, nil
}

func (e *env) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

func (e *env) newController(notify func()) *chat.Controller {
	return chat.NewController(e.api, e.store, e.log, notify)
}
