// Package chat owns the conversation state: the session list, the
// active session's messages, and the streaming response life cycle.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"lucas/internal/client"
	"lucas/internal/logging"
	"lucas/internal/progress"
	"lucas/internal/store"
	"lucas/internal/types"
)

// Backend is the slice of the API client the controller depends on.
// *client.Client satisfies it.
type Backend interface {
	CreateSession(ctx context.Context, sessionID string) (*client.SessionAck, error)
	SessionHistory(ctx context.Context, sessionID string) (*client.HistoryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	MessageStream(ctx context.Context, req client.MessageRequest, onChunk client.ChunkHandler)
}

// Confirmer is the yes/no gate in front of destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

var (
	ErrOffline         = errors.New("backend is unreachable")
	ErrEmptyMessage    = errors.New("nothing to send")
	ErrStreamInFlight  = errors.New("a response is already streaming")
	ErrNoActiveSession = errors.New("no active session")
	ErrBusy            = errors.New("another operation is in progress")
	ErrUnknownSession  = errors.New("unknown session")
)

const defaultTitle = "New Chat"

// phase is the controller's lifecycle state. Operations that require an
// idle controller reject outright when it is anything else, so a send
// cannot race a delete and a delete cannot race a history load.
type phase int

const (
	phaseIdle phase = iota
	phaseLoadingHistory
	phaseAwaitingResponse
	phaseCreatingSession
	phaseDeletingSession
)

// Controller multiplexes session lifecycle, local persistence, and the
// streaming read loop. All methods are safe for concurrent use; the
// notify callback fires after every externally visible state change.
type Controller struct {
	backend Backend
	store   store.SessionStore
	log     logging.Logger
	notify  func()

	stepClearDelay time.Duration

	mu            sync.Mutex
	sessions      []types.ChatSession
	activeID      string
	messages      []types.Message
	historyLoaded bool
	phase         phase
	deletingID    string
	offline       bool
	tracker       *progress.Tracker
	streamCancel  context.CancelFunc
	sendSeq       uint64
}

func NewController(backend Backend, st store.SessionStore, log logging.Logger, notify func()) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		backend:        backend,
		store:          st,
		log:            log,
		notify:         notify,
		stepClearDelay: 1500 * time.Millisecond,
		tracker:        progress.NewTracker(),
	}
}

// Start loads the persisted session list and activates the most recent
// session. A fresh install has no sessions, so one is created.
func (c *Controller) Start(ctx context.Context) error {
	sessions, err := c.store.LoadSessions()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()

	if len(sessions) == 0 {
		return c.CreateSession(ctx)
	}
	return c.SelectSession(ctx, sessions[0].ID)
}

// CreateSession registers a new session with the backend and makes it
// active. On registration failure nothing changes locally.
func (c *Controller) CreateSession(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != phaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = phaseCreatingSession
	c.mu.Unlock()
	c.notifyUI()

	id := types.NewID()
	_, err := c.backend.CreateSession(ctx, id)

	c.mu.Lock()
	c.phase = phaseIdle
	if err != nil {
		c.mu.Unlock()
		c.notifyUI()
		c.log.Warn("session create failed", logging.F("err", err))
		return err
	}
	session := types.ChatSession{ID: id, Title: defaultTitle, CreatedAt: time.Now()}
	c.sessions = append([]types.ChatSession{session}, c.sessions...)
	c.persistSessionsLocked()
	c.activeID = id
	c.messages = []types.Message{}
	c.historyLoaded = true
	if err := c.store.SaveMessages(id, c.messages); err != nil {
		c.log.Warn("persisting empty history failed", logging.F("err", err))
	}
	c.mu.Unlock()
	c.notifyUI()
	return nil
}

// SelectSession activates a session and loads its history. Selecting
// the already-active session with history loaded is a no-op. A stream
// in flight for the previous session is cancelled.
func (c *Controller) SelectSession(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.activeID == id && c.historyLoaded && c.phase != phaseLoadingHistory {
		c.mu.Unlock()
		return nil
	}
	if !c.sessionExistsLocked(id) {
		c.mu.Unlock()
		return ErrUnknownSession
	}
	if c.streamCancel != nil {
		c.streamCancel()
		c.streamCancel = nil
	}
	c.tracker.Clear()
	c.activeID = id
	c.messages = nil
	c.historyLoaded = false
	c.phase = phaseLoadingHistory
	c.mu.Unlock()
	c.notifyUI()

	c.loadHistory(ctx, id)
	return nil
}

// LoadHistory re-reads the active session's history, cache first. Used
// by the UI to recover after a failed fetch.
func (c *Controller) LoadHistory(ctx context.Context) error {
	c.mu.Lock()
	id := c.activeID
	if id == "" {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	if c.phase != phaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.messages = nil
	c.historyLoaded = false
	c.phase = phaseLoadingHistory
	c.mu.Unlock()
	c.notifyUI()

	c.loadHistory(ctx, id)
	return nil
}

// loadHistory fills the message list for id: local cache first, then
// the network. Failures never propagate; a fetch error becomes a
// synthetic model message.
func (c *Controller) loadHistory(ctx context.Context, id string) {
	cached, ok, err := c.store.LoadMessages(id)
	if err != nil {
		c.log.Warn("reading message cache failed", logging.F("session", id), logging.F("err", err))
		ok = false
	}
	if ok {
		c.mu.Lock()
		if c.activeID == id {
			c.messages = types.EnsureMessageIDs(cached)
			c.historyLoaded = true
			c.phase = phaseIdle
		}
		c.mu.Unlock()
		c.notifyUI()
		return
	}

	resp, err := c.backend.SessionHistory(ctx, id)

	c.mu.Lock()
	if c.activeID != id {
		// Switched away mid-fetch; the result belongs to nobody.
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.log.Warn("history fetch failed", logging.F("session", id), logging.F("err", err))
		c.messages = []types.Message{historyFailureMessage()}
	} else {
		c.messages = types.EnsureMessageIDs(resp.Events)
		if saveErr := c.store.SaveMessages(id, c.messages); saveErr != nil {
			c.log.Warn("persisting history failed", logging.F("session", id), logging.F("err", saveErr))
		}
	}
	c.historyLoaded = true
	c.phase = phaseIdle
	c.mu.Unlock()
	c.notifyUI()
}

// SendMessage appends the user's message and a model placeholder, then
// streams the response into the placeholder. It blocks until the stream
// ends; callers run it on their own goroutine and repaint on notify.
func (c *Controller) SendMessage(ctx context.Context, text string, image *types.ImagePayload) error {
	hasText := trimmed(text) != ""

	c.mu.Lock()
	switch {
	case c.offline:
		c.mu.Unlock()
		return ErrOffline
	case !hasText && image == nil:
		c.mu.Unlock()
		return ErrEmptyMessage
	case c.phase == phaseAwaitingResponse:
		c.mu.Unlock()
		return ErrStreamInFlight
	case c.phase != phaseIdle:
		c.mu.Unlock()
		return ErrBusy
	case c.activeID == "":
		c.mu.Unlock()
		return ErrNoActiveSession
	}

	sessionID := c.activeID
	firstMessage := len(c.messages) == 0

	var parts []types.MessagePart
	if hasText {
		parts = append(parts, types.MessagePart{Text: text})
	}
	if image != nil {
		payload := *image
		parts = append(parts, types.MessagePart{InlineData: &payload})
	}
	userMessage := types.Message{ID: types.NewID(), Role: types.MessageRoleUser, Parts: parts}
	placeholder := types.NewModelPlaceholder()
	c.messages = append(c.messages, userMessage, placeholder)

	if firstMessage && hasText {
		c.setTitleLocked(sessionID, deriveTitle(text))
	}

	c.tracker.Begin()
	c.phase = phaseAwaitingResponse
	c.sendSeq++
	seq := c.sendSeq
	streamCtx, cancel := context.WithCancel(ctx)
	c.streamCancel = cancel
	placeholderID := placeholder.ID
	c.mu.Unlock()
	c.notifyUI()

	var sawTerminal, sawError bool
	c.backend.MessageStream(streamCtx, client.MessageRequest{
		SessionID: sessionID,
		Message:   text,
		Image:     image,
	}, func(chunk types.StreamChunk) {
		c.mu.Lock()
		if c.sendSeq != seq {
			c.mu.Unlock()
			return
		}
		if chunk.IsError {
			sawError = true
			c.appendToMessageLocked(placeholderID, errorBlock(chunk.ErrorText))
			c.tracker.FailActive()
		} else {
			if chunk.FinishReason != "" {
				sawTerminal = true
			}
			if chunk.Text != "" {
				c.appendToMessageLocked(placeholderID, chunk.Text)
			}
			if chunk.FunctionCall != nil {
				c.tracker.Advance(chunk.FunctionCall.Name)
			}
		}
		c.mu.Unlock()
		c.notifyUI()
	})

	cancelled := streamCtx.Err() != nil
	cancel()

	c.mu.Lock()
	if c.sendSeq != seq {
		c.mu.Unlock()
		return nil
	}
	c.streamCancel = nil
	if cancelled {
		if c.phase == phaseAwaitingResponse {
			c.phase = phaseIdle
		}
		c.mu.Unlock()
		c.notifyUI()
		return nil
	}
	if !sawTerminal && !sawError {
		c.appendToMessageLocked(placeholderID, interruptionWarning)
	}
	c.phase = phaseIdle
	c.tracker.CompleteAll()
	if c.activeID == sessionID {
		if err := c.store.SaveMessages(sessionID, c.messages); err != nil {
			c.log.Warn("persisting messages failed", logging.F("session", sessionID), logging.F("err", err))
		}
	}
	c.mu.Unlock()
	c.notifyUI()

	time.AfterFunc(c.stepClearDelay, func() {
		c.mu.Lock()
		if c.sendSeq == seq {
			c.tracker.Clear()
		}
		c.mu.Unlock()
		c.notifyUI()
	})
	return nil
}

// DeleteSession removes a session after the confirmation gate. A failed
// remote delete leaves local state untouched. Deleting the active
// session activates the next one, or creates a fresh one if none
// remain.
func (c *Controller) DeleteSession(ctx context.Context, id string, confirm Confirmer) error {
	c.mu.Lock()
	if c.phase == phaseDeletingSession && c.deletingID == id {
		c.mu.Unlock()
		return nil
	}
	if c.phase != phaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.sessionExistsLocked(id) {
		c.mu.Unlock()
		return ErrUnknownSession
	}
	c.phase = phaseDeletingSession
	c.deletingID = id
	c.mu.Unlock()
	c.notifyUI()

	if confirm != nil && !confirm.Confirm("Are you sure you want to delete this chat?") {
		c.mu.Lock()
		c.phase = phaseIdle
		c.deletingID = ""
		c.mu.Unlock()
		c.notifyUI()
		return nil
	}

	err := c.backend.DeleteSession(ctx, id)

	c.mu.Lock()
	c.phase = phaseIdle
	c.deletingID = ""
	if err != nil {
		c.mu.Unlock()
		c.notifyUI()
		c.log.Warn("session delete failed", logging.F("session", id), logging.F("err", err))
		return err
	}

	kept := c.sessions[:0:0]
	for _, s := range c.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sessions = kept
	c.persistSessionsLocked()
	if err := c.store.DeleteMessages(id); err != nil {
		c.log.Warn("removing message cache failed", logging.F("session", id), logging.F("err", err))
	}

	wasActive := c.activeID == id
	var nextID string
	if wasActive {
		c.activeID = ""
		c.messages = nil
		c.historyLoaded = false
		if len(c.sessions) > 0 {
			nextID = c.sessions[0].ID
		}
	}
	c.mu.Unlock()
	c.notifyUI()

	if !wasActive {
		return nil
	}
	if nextID != "" {
		return c.SelectSession(ctx, nextID)
	}
	return c.CreateSession(ctx)
}

// SetOffline flips the connectivity flag; sends are rejected while set.
func (c *Controller) SetOffline(offline bool) {
	c.mu.Lock()
	changed := c.offline != offline
	c.offline = offline
	c.mu.Unlock()
	if changed {
		c.notifyUI()
	}
}

// Snapshot is an immutable view of controller state for rendering.
type Snapshot struct {
	Sessions       []types.ChatSession
	ActiveID       string
	Messages       []types.Message
	Steps          []types.Step
	Responding     bool
	LoadingHistory bool
	Creating       bool
	DeletingID     string
	Offline        bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Sessions:       types.CloneSessions(c.sessions),
		ActiveID:       c.activeID,
		Messages:       types.CloneMessages(c.messages),
		Steps:          c.tracker.Steps(),
		Responding:     c.phase == phaseAwaitingResponse,
		LoadingHistory: c.phase == phaseLoadingHistory,
		Creating:       c.phase == phaseCreatingSession,
		DeletingID:     c.deletingID,
		Offline:        c.offline,
	}
}

func (c *Controller) setTitleLocked(id, title string) {
	for i := range c.sessions {
		if c.sessions[i].ID == id {
			c.sessions[i].Title = title
		}
	}
	c.persistSessionsLocked()
}

func (c *Controller) persistSessionsLocked() {
	if err := c.store.SaveSessions(c.sessions); err != nil {
		c.log.Warn("persisting session list failed", logging.F("err", err))
	}
}

func (c *Controller) appendToMessageLocked(id, text string) {
	for i := range c.messages {
		if c.messages[i].ID != id {
			continue
		}
		parts := c.messages[i].Parts
		if len(parts) == 0 || parts[len(parts)-1].InlineData != nil {
			c.messages[i].Parts = append(parts, types.MessagePart{Text: text})
			return
		}
		parts[len(parts)-1].Text += text
		return
	}
}

func (c *Controller) sessionExistsLocked(id string) bool {
	for _, s := range c.sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) notifyUI() {
	if c.notify != nil {
		c.notify()
	}
}
