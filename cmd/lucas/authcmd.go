package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
)

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "account email")
	oauth := fs.String("oauth", "", "sign in through an OAuth provider (e.g. google)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if *oauth != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		url, err := e.identity.SignInWithOAuth(ctx, *oauth)
		if err != nil {
			return err
		}
		fmt.Println("open this URL in a browser to continue:")
		fmt.Println(url)
		return nil
	}

	address, password, err := readCredentials(*email)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	session, err := e.identity.SignInWithPassword(ctx, address, password)
	if err != nil {
		return err
	}
	if session.User != nil {
		fmt.Printf("signed in as %s\n", session.User.Email)
	} else {
		fmt.Println("signed in")
	}
	return nil
}

func runSignup(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	address, password, err := readCredentials(*email)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := e.identity.SignUp(ctx, address, password); err != nil {
		return err
	}
	fmt.Println("account created; check your inbox if confirmation is required")
	return nil
}

func runLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
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
	if err := e.identity.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func readCredentials(email string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if strings.TrimSpace(email) == "" {
		fmt.Print("email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	fmt.Print("password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", err
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	return email, password, nil
}
