package handlers

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/edgard/ollamabot/internal/config"
	"github.com/edgard/ollamabot/internal/database"
)

type sentMessage struct {
	chatID  int64
	text    string
	replyTo int
}

type editedMessage struct {
	chatID    int64
	messageID int
	text      string
}

// fakeTransport records every outbound operation. The typing goroutine
// runs concurrently with the handler, so access is guarded.
type fakeTransport struct {
	mu      sync.Mutex
	sends   []sentMessage
	edits   []editedMessage
	deletes []int
	typing  int

	sendErr   error
	editErr   error
	deleteErr error
}

func (f *fakeTransport) sendMessage(_ context.Context, chatID int64, text string, replyTo int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sends = append(f.sends, sentMessage{chatID: chatID, text: text, replyTo: replyTo})
	return 100 + len(f.sends), nil
}

func (f *fakeTransport) editMessage(_ context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editedMessage{chatID: chatID, messageID: messageID, text: text})
	return nil
}

func (f *fakeTransport) deleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeTransport) sendTyping(_ context.Context, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return nil
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, len(f.sends))
	for i, s := range f.sends {
		texts[i] = s.text
	}
	return texts
}

// fakeStore implements database.Store with canned results.
type fakeStore struct {
	mu sync.Mutex

	user      *database.User
	upsertErr error

	upserts        int
	lastUsername   string
	activeSets     []bool
	setActiveErr   error
	setActiveCalls int
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) UpsertUser(_ context.Context, telegramID, username string) (*database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts++
	f.lastUsername = username
	u := *f.user
	u.TelegramID = telegramID
	return &u, nil
}

func (f *fakeStore) SetUserActive(_ context.Context, _ int64, active bool) (*database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setActiveCalls++
	if f.setActiveErr != nil {
		return nil, f.setActiveErr
	}
	f.activeSets = append(f.activeSets, active)
	u := *f.user
	u.IsActive = active
	return &u, nil
}

func (f *fakeStore) CreateUser(context.Context, string, string) (*database.User, error) {
	return nil, nil
}
func (f *fakeStore) GetUser(context.Context, int64) (*database.User, error)   { return nil, nil }
func (f *fakeStore) ListUsers(context.Context) ([]*database.User, error)      { return nil, nil }
func (f *fakeStore) UpdateUser(context.Context, *database.User) (*database.User, error) {
	return nil, nil
}
func (f *fakeStore) DeleteUser(context.Context, int64) error { return nil }
func (f *fakeStore) RunMaintenance(context.Context) error    { return nil }

// fakeGenerator implements ollama.Client and counts invocations.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (f *fakeGenerator) Reply(context.Context, string, string, map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testDeps(store *fakeStore, gen *fakeGenerator) HandlerDeps {
	return HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			Messages: config.DefaultMessages,
			Ollama:   config.OllamaConfig{Model: "llama3"},
			Telegram: config.TelegramConfig{SecretWord: "hunter2"},
		},
		Store:  store,
		Ollama: gen,
	}
}
