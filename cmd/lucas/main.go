package main

import (
	"fmt"
	"os"
)

const usageText = `lucas is a terminal client for the Lucas trading-backtest assistant.

Usage:
  lucas <command> [flags]

Commands:
  ui        run the chat UI (default)
  login     sign in with email and password
  signup    create an account
  logout    sign out and clear the cached credential
  sessions  list chat sessions
  new       create a chat session
  send      send one message and print the streamed reply
  delete    delete a chat session
  export    write a session transcript to a file
  help      show help

Examples:
  lucas login --email you@example.com
  lucas send "Backtest a simple moving average crossover on TSLA"
  lucas export --format yaml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("ui", runUI(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "login":
		exitOnErr("login", runLogin(args[1:]))
	case "signup":
		exitOnErr("signup", runSignup(args[1:]))
	case "logout":
		exitOnErr("logout", runLogout(args[1:]))
	case "sessions":
		exitOnErr("sessions", runSessions(args[1:]))
	case "new":
		exitOnErr("new", runNew(args[1:]))
	case "send":
		exitOnErr("send", runSend(args[1:]))
	case "delete":
		exitOnErr("delete", runDelete(args[1:]))
	case "export":
		exitOnErr("export", runExport(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
