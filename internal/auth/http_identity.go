package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// HTTPIdentity speaks the GoTrue-style REST surface the Lucas backend
// fronts for authentication. The current session is cached on disk so a
// restarted client stays signed in.
type HTTPIdentity struct {
	baseURL   string
	anonKey   string
	tokenPath string
	http      *http.Client

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
}

func NewHTTPIdentity(baseURL, anonKey, tokenPath string) *HTTPIdentity {
	i := &HTTPIdentity{
		baseURL:   strings.TrimRight(baseURL, "/"),
		anonKey:   anonKey,
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		listeners: map[int]func(*Session){},
	}
	_ = i.loadSession()
	return i
}

func (i *HTTPIdentity) CurrentSession(ctx context.Context) (*Session, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.session == nil || strings.TrimSpace(i.session.AccessToken) == "" {
		return nil, ErrNotAuthenticated
	}
	copySession := *i.session
	return &copySession, nil
}

func (i *HTTPIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := i.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	i.setSession(&session)
	return &session, nil
}

func (i *HTTPIdentity) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := i.doJSON(ctx, http.MethodPost, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	// Providers with email confirmation enabled return no token yet.
	if strings.TrimSpace(session.AccessToken) != "" {
		i.setSession(&session)
	}
	return &session, nil
}

func (i *HTTPIdentity) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "", errors.New("provider is required")
	}
	return i.baseURL + "/auth/v1/authorize?provider=" + url.QueryEscape(provider), nil
}

func (i *HTTPIdentity) SignOut(ctx context.Context) error {
	token := ""
	i.mu.Lock()
	if i.session != nil {
		token = i.session.AccessToken
	}
	i.mu.Unlock()
	if token != "" {
		// Revocation failure is not fatal; the local session is dropped
		// either way.
		_ = i.doAuthed(ctx, http.MethodPost, "/auth/v1/logout", token)
	}
	i.setSession(nil)
	return nil
}

func (i *HTTPIdentity) OnChange(fn func(*Session)) func() {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.listeners, id)
	}
}

func (i *HTTPIdentity) setSession(session *Session) {
	i.mu.Lock()
	i.session = session
	listeners := make([]func(*Session), 0, len(i.listeners))
	for _, fn := range i.listeners {
		listeners = append(listeners, fn)
	}
	i.mu.Unlock()

	i.storeSession(session)
	for _, fn := range listeners {
		fn(session)
	}
}

func (i *HTTPIdentity) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	reader = bytes.NewReader(buf)

	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if i.anonKey != "" {
		req.Header.Set("apikey", i.anonKey)
	}
	resp, err := i.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAuthError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (i *HTTPIdentity) doAuthed(ctx context.Context, method, path, token string) error {
	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if i.anonKey != "" {
		req.Header.Set("apikey", i.anonKey)
	}
	resp, err := i.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAuthError(resp)
	}
	return nil
}

func (i *HTTPIdentity) loadSession() error {
	if i.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(i.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return err
	}
	if strings.TrimSpace(session.AccessToken) == "" {
		return nil
	}
	i.session = &session
	return nil
}

func (i *HTTPIdentity) storeSession(session *Session) {
	if i.tokenPath == "" {
		return
	}
	if session == nil {
		_ = os.Remove(i.tokenPath)
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(i.tokenPath), 0o700)
	_ = os.WriteFile(i.tokenPath, data, 0o600)
}

func decodeAuthError(resp *http.Response) error {
	type errorPayload struct {
		Message     string `json:"msg"`
		Description string `json:"error_description"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := payload.Message
	if message == "" {
		message = payload.Description
	}
	if message == "" {
		message = resp.Status
	}
	return fmt.Errorf("auth error (%d): %s", resp.StatusCode, message)
}
