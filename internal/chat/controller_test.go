package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lucas/internal/client"
	"lucas/internal/store"
	"lucas/internal/types"
)

type fakeBackend struct {
	mu           sync.Mutex
	createErr    error
	deleteErr    error
	historyErr   error
	historyBody  []types.Message
	historyCalls int
	deleted      []string
	sent         []client.MessageRequest
	streamFn     func(ctx context.Context, onChunk client.ChunkHandler)
}

func (b *fakeBackend) CreateSession(ctx context.Context, sessionID string) (*client.SessionAck, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	return &client.SessionAck{SessionID: sessionID}, nil
}

func (b *fakeBackend) SessionHistory(ctx context.Context, sessionID string) (*client.HistoryResponse, error) {
	b.mu.Lock()
	b.historyCalls++
	b.mu.Unlock()
	if b.historyErr != nil {
		return nil, b.historyErr
	}
	return &client.HistoryResponse{Events: b.historyBody}, nil
}

func (b *fakeBackend) DeleteSession(ctx context.Context, sessionID string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.mu.Lock()
	b.deleted = append(b.deleted, sessionID)
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) MessageStream(ctx context.Context, req client.MessageRequest, onChunk client.ChunkHandler) {
	b.mu.Lock()
	b.sent = append(b.sent, req)
	fn := b.streamFn
	b.mu.Unlock()
	if fn != nil {
		fn(ctx, onChunk)
	}
}

func (b *fakeBackend) historyCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.historyCalls
}

func newTestController(t *testing.T, backend *fakeBackend) (*Controller, store.SessionStore) {
	t.Helper()
	st, err := store.NewBboltSessionStore(filepath.Join(t.TempDir(), "lucas.db"))
	if err != nil {
		t.Fatalf("NewBboltSessionStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	c := NewController(backend, st, nil, nil)
	c.stepClearDelay = 10 * time.Millisecond
	return c, st
}

func confirmYes() Confirmer { return ConfirmFunc(func(string) bool { return true }) }
func confirmNo() Confirmer  { return ConfirmFunc(func(string) bool { return false }) }

func TestFreshStartAutoCreatesOneSession(t *testing.T) {
	c, _ := newTestController(t, &fakeBackend{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Sessions) != 1 {
		t.Fatalf("auto-create made %d sessions", len(snap.Sessions))
	}
	if snap.ActiveID != snap.Sessions[0].ID {
		t.Fatalf("auto-created session is not active")
	}
	if snap.Sessions[0].Title != "New Chat" {
		t.Fatalf("title = %q", snap.Sessions[0].Title)
	}
}

func TestCreateSessionFailureAddsNothing(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("boom")}
	c, _ := newTestController(t, backend)
	if err := c.CreateSession(context.Background()); err == nil {
		t.Fatalf("expected registration failure")
	}
	snap := c.Snapshot()
	if len(snap.Sessions) != 0 || snap.ActiveID != "" {
		t.Fatalf("partial session added on failure: %+v", snap)
	}
}

func TestSendGuards(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)
	ctx := context.Background()

	if err := c.SendMessage(ctx, "hello", nil); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("send without session: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SendMessage(ctx, "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank send: %v", err)
	}
	c.SetOffline(true)
	if err := c.SendMessage(ctx, "hello", nil); !errors.Is(err, ErrOffline) {
		t.Fatalf("offline send: %v", err)
	}
	c.SetOffline(false)
	if len(c.Snapshot().Messages) != 0 {
		t.Fatalf("rejected sends produced messages")
	}
}

func TestSendRejectedWhileStreamInFlight(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			<-release
			onChunk(types.StreamChunk{FinishReason: "STOP"})
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.SendMessage(ctx, "first", nil) }()

	waitFor(t, func() bool { return c.Snapshot().Responding })
	if err := c.SendMessage(ctx, "second", nil); !errors.Is(err, ErrStreamInFlight) {
		t.Fatalf("concurrent send: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	// Only the first send's user message and placeholder exist.
	if got := len(c.Snapshot().Messages); got != 2 {
		t.Fatalf("message count = %d", got)
	}
}

func TestStreamTextMergesInOrder(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{Text: "The SMA "})
			onChunk(types.StreamChunk{FunctionCall: &types.FunctionCall{Name: "data_retriever"}})
			onChunk(types.StreamChunk{Text: "crossover "})
			onChunk(types.StreamChunk{Text: "wins."})
			onChunk(types.StreamChunk{FinishReason: "STOP"})
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SendMessage(ctx, "run it", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("message count = %d", len(snap.Messages))
	}
	reply := snap.Messages[1]
	if reply.Role != types.MessageRoleModel {
		t.Fatalf("reply role = %s", reply.Role)
	}
	if got := reply.Text(); got != "The SMA crossover wins." {
		t.Fatalf("merged text = %q", got)
	}
	if strings.Contains(reply.Text(), "interrupted") {
		t.Fatalf("graceful stream got an interruption warning")
	}
}

func TestInterruptionWarningAppendedExactlyOnce(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{Text: "partial"})
			// Stream ends with no finishReason and no error chunk.
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SendMessage(ctx, "hello", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	text := c.Snapshot().Messages[1].Text()
	if !strings.HasPrefix(text, "partial") {
		t.Fatalf("delta lost: %q", text)
	}
	if got := strings.Count(text, interruptionWarning); got != 1 {
		t.Fatalf("interruption warning appended %d times", got)
	}
}

func TestErrorChunkSuppressesInterruptionWarning(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{Text: "so far"})
			onChunk(types.StreamChunk{IsError: true, ErrorText: "upstream exploded"})
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SendMessage(ctx, "hello", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	text := c.Snapshot().Messages[1].Text()
	if !strings.Contains(text, "**Error:**") || !strings.Contains(text, "upstream exploded") {
		t.Fatalf("error block missing: %q", text)
	}
	if strings.Contains(text, "interrupted") {
		t.Fatalf("error chunk did not suppress the interruption warning")
	}
}

func TestStepsClearAfterDelay(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{FunctionCall: &types.FunctionCall{Name: "exit_loop"}})
			onChunk(types.StreamChunk{FinishReason: "STOP"})
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.SendMessage(ctx, "go", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	steps := c.Snapshot().Steps
	if len(steps) != 5 {
		t.Fatalf("step count = %d", len(steps))
	}
	for i, step := range steps {
		if step.Status != types.StepCompleted {
			t.Fatalf("step %d = %s after graceful end", i, step.Status)
		}
	}
	waitFor(t, func() bool { return len(c.Snapshot().Steps) == 0 })
}

func TestFirstMessageDerivesTitle(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{FinishReason: "STOP"})
		},
	}
	c, st := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	long := "Backtest a simple moving average crossover on TSLA"
	if err := c.SendMessage(ctx, long, nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	want := long[:27] + "..."
	snap := c.Snapshot()
	if snap.Sessions[0].Title != want {
		t.Fatalf("title = %q, want %q", snap.Sessions[0].Title, want)
	}
	persisted, err := st.LoadSessions()
	if err != nil || len(persisted) != 1 || persisted[0].Title != want {
		t.Fatalf("persisted title = %+v err=%v", persisted, err)
	}

	// The second message leaves the title alone.
	if err := c.SendMessage(ctx, "And now on AAPL please", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got := c.Snapshot().Sessions[0].Title; got != want {
		t.Fatalf("second send changed title to %q", got)
	}
}

func TestShortTitleKeptVerbatim(t *testing.T) {
	if got := deriveTitle("Hi"); got != "Hi" {
		t.Fatalf("deriveTitle(Hi) = %q", got)
	}
	if got := deriveTitle(strings.Repeat("x", 30)); got != strings.Repeat("x", 30) {
		t.Fatalf("boundary input truncated: %q", got)
	}
	if got := deriveTitle(strings.Repeat("x", 31)); got != strings.Repeat("x", 27)+"..." {
		t.Fatalf("long input = %q", got)
	}
}

func TestImageOnlySendKeepsDefaultTitle(t *testing.T) {
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{FinishReason: "STOP"})
		},
	}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	image := &types.ImagePayload{DisplayName: "chart.png", Data: "aGk=", MimeType: "image/png"}
	if err := c.SendMessage(ctx, "", image); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	snap := c.Snapshot()
	if snap.Sessions[0].Title != "New Chat" {
		t.Fatalf("image-only first send changed title to %q", snap.Sessions[0].Title)
	}
	parts := snap.Messages[0].Parts
	if len(parts) != 1 || parts[0].InlineData == nil || parts[0].InlineData.DisplayName != "chart.png" {
		t.Fatalf("user parts = %+v", parts)
	}
	if backend.sent[0].Image == nil {
		t.Fatalf("image payload not forwarded")
	}
}

func TestLocalCacheHitSkipsNetwork(t *testing.T) {
	backend := &fakeBackend{}
	c, st := newTestController(t, backend)
	ctx := context.Background()

	session := types.ChatSession{ID: types.NewID(), Title: "Cached", CreatedAt: time.Now()}
	if err := st.SaveSessions([]types.ChatSession{session}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	cached := []types.Message{{ID: "m1", Role: types.MessageRoleUser, Parts: []types.MessagePart{{Text: "hi"}}}}
	if err := st.SaveMessages(session.ID, cached); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if backend.historyCallCount() != 0 {
		t.Fatalf("cache hit still issued a network call")
	}
	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Text() != "hi" {
		t.Fatalf("cached history lost: %+v", snap.Messages)
	}
}

func TestHistoryFetchFailureSynthesizesMessage(t *testing.T) {
	backend := &fakeBackend{historyErr: errors.New("503")}
	c, st := newTestController(t, backend)
	ctx := context.Background()

	session := types.ChatSession{ID: types.NewID(), Title: "Remote", CreatedAt: time.Now()}
	if err := st.SaveSessions([]types.ChatSession{session}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Role != types.MessageRoleModel {
		t.Fatalf("messages = %+v", snap.Messages)
	}
	if snap.Messages[0].Text() != "Error: Could not load session history." {
		t.Fatalf("synthetic message = %q", snap.Messages[0].Text())
	}
}

func TestDeleteRemovesSessionAndReselects(t *testing.T) {
	backend := &fakeBackend{}
	c, st := newTestController(t, backend)
	ctx := context.Background()

	first := types.ChatSession{ID: "s-first", Title: "First", CreatedAt: time.Now()}
	second := types.ChatSession{ID: "s-second", Title: "Second", CreatedAt: time.Now()}
	if err := st.SaveSessions([]types.ChatSession{first, second}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	if err := st.SaveMessages(first.ID, []types.Message{{ID: "m", Role: types.MessageRoleUser, Parts: []types.MessagePart{{Text: "x"}}}}); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := c.DeleteSession(ctx, first.ID, confirmYes()); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Sessions) != 1 || snap.Sessions[0].ID != second.ID {
		t.Fatalf("sessions after delete = %+v", snap.Sessions)
	}
	if snap.ActiveID != second.ID {
		t.Fatalf("next session not activated: %q", snap.ActiveID)
	}
	if _, ok, _ := st.LoadMessages(first.ID); ok {
		t.Fatalf("message cache survived delete")
	}
	persisted, _ := st.LoadSessions()
	if len(persisted) != 1 || persisted[0].ID != second.ID {
		t.Fatalf("persisted sessions = %+v", persisted)
	}
}

func TestDeleteLastSessionCreatesFreshOne(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	old := c.Snapshot().ActiveID
	if err := c.DeleteSession(ctx, old, confirmYes()); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Sessions) != 1 || snap.Sessions[0].ID == old {
		t.Fatalf("fresh session not created: %+v", snap.Sessions)
	}
	if snap.ActiveID != snap.Sessions[0].ID {
		t.Fatalf("fresh session not active")
	}
}

func TestDeleteDeclinedIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := c.Snapshot().ActiveID
	if err := c.DeleteSession(ctx, id, confirmNo()); err != nil {
		t.Fatalf("declined delete errored: %v", err)
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("declined delete hit the backend")
	}
	if got := c.Snapshot(); len(got.Sessions) != 1 || got.ActiveID != id {
		t.Fatalf("declined delete mutated state: %+v", got)
	}
}

func TestRemoteDeleteFailureLeavesLocalState(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("500")}
	c, st := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := c.Snapshot().ActiveID
	if err := c.DeleteSession(ctx, id, confirmYes()); err == nil {
		t.Fatalf("expected delete failure")
	}
	snap := c.Snapshot()
	if len(snap.Sessions) != 1 || snap.ActiveID != id {
		t.Fatalf("failed delete mutated state: %+v", snap)
	}
	persisted, _ := st.LoadSessions()
	if len(persisted) != 1 {
		t.Fatalf("failed delete mutated the store")
	}
}

func TestSwitchingSessionsCancelsStream(t *testing.T) {
	streamDone := make(chan struct{})
	backend := &fakeBackend{
		streamFn: func(ctx context.Context, onChunk client.ChunkHandler) {
			onChunk(types.StreamChunk{Text: "partial"})
			<-ctx.Done()
			close(streamDone)
		},
	}
	c, st := newTestController(t, backend)
	ctx := context.Background()

	a := types.ChatSession{ID: "s-a", Title: "A", CreatedAt: time.Now()}
	b := types.ChatSession{ID: "s-b", Title: "B", CreatedAt: time.Now()}
	if err := st.SaveSessions([]types.ChatSession{a, b}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sendDone := make(chan error, 1)
	go func() { sendDone <- c.SendMessage(ctx, "long question", nil) }()
	waitFor(t, func() bool { return c.Snapshot().Responding })

	if err := c.SelectSession(ctx, b.ID); err != nil {
		t.Fatalf("SelectSession: %v", err)
	}
	select {
	case <-streamDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream not cancelled on session switch")
	}
	if err := <-sendDone; err != nil {
		t.Fatalf("cancelled send errored: %v", err)
	}

	snap := c.Snapshot()
	if snap.ActiveID != b.ID || snap.Responding {
		t.Fatalf("switch state = %+v", snap)
	}
	// The cancelled stream persists nothing for the old session; only
	// the empty history written on first load remains.
	cached, _, _ := st.LoadMessages(a.ID)
	if len(cached) != 0 {
		t.Fatalf("cancelled stream wrote the message cache: %+v", cached)
	}
}

func TestSelectActiveLoadedSessionIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	c, st := newTestController(t, backend)
	ctx := context.Background()

	session := types.ChatSession{ID: "s-1", Title: "One", CreatedAt: time.Now()}
	if err := st.SaveSessions([]types.ChatSession{session}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	calls := backend.historyCallCount()
	if err := c.SelectSession(ctx, session.ID); err != nil {
		t.Fatalf("SelectSession: %v", err)
	}
	if backend.historyCallCount() != calls {
		t.Fatalf("re-select reloaded history")
	}
}

func TestLoadHistoryRereadsCache(t *testing.T) {
	backend := &fakeBackend{}
	c, st := newTestController(t, backend)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := c.Snapshot().ActiveID

	// Another writer updates the cache behind the controller's back.
	fresh := []types.Message{{ID: "m-new", Role: types.MessageRoleUser, Parts: []types.MessagePart{{Text: "from elsewhere"}}}}
	if err := st.SaveMessages(id, fresh); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}
	if err := c.LoadHistory(ctx); err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Text() != "from elsewhere" {
		t.Fatalf("reload missed the cache update: %+v", snap.Messages)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}
