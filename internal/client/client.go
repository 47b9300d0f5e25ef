package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lucas/internal/auth"
	"lucas/internal/logging"
)

// Client talks to the Lucas backend. All calls carry a bearer token from
// the injected token source.
type Client struct {
	baseURL string
	tokens  auth.TokenSource
	http    *http.Client
	log     logging.Logger
}

func New(baseURL string, tokens auth.TokenSource, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// CreateSession registers (or updates) a session with the backend. The
// response maps the backend's `id` field back to the session id.
func (c *Client) CreateSession(ctx context.Context, sessionID string) (*SessionAck, error) {
	body := createSessionRequest{SessionID: sessionID, State: map[string]any{}}
	var resp apiSessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/session", body, &resp); err != nil {
		return nil, err
	}
	return &SessionAck{SessionID: resp.ID, State: resp.State}, nil
}

// SessionHistory fetches the server-side event history for a session.
func (c *Client) SessionHistory(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/session/"+sessionID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSession deletes a session on the backend. A 204 and a JSON body
// are both success shapes.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/session/"+sessionID, nil, nil)
}

// Probe checks backend reachability without authentication. Used by the
// UI to drive the offline indicator.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
