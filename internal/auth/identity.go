package auth

import (
	"context"
	"errors"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated identity session. Distinct from a chat
// session; this is the bearer credential for backend calls.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Identity is the external identity-provider capability. The controller
// and app depend on this interface, never on a concrete provider.
type Identity interface {
	// CurrentSession returns the active session, or ErrNotAuthenticated.
	CurrentSession(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuth returns the authorization URL for the caller to open.
	SignInWithOAuth(ctx context.Context, provider string) (string, error)
	SignOut(ctx context.Context) error
	// OnChange registers a callback fired with the new session (nil on
	// sign-out). The returned func unsubscribes.
	OnChange(fn func(*Session)) func()
}

// TokenSource is the narrow slice of Identity the backend client needs.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// IdentityTokenSource adapts an Identity to a TokenSource.
type IdentityTokenSource struct {
	Identity Identity
}

func (s IdentityTokenSource) Token(ctx context.Context) (string, error) {
	session, err := s.Identity.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	return session.AccessToken, nil
}

// StaticToken is a TokenSource for tests and one-shot CLI use.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNotAuthenticated
	}
	return string(t), nil
}
