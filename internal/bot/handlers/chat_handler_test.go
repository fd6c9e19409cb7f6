package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/ollamabot/internal/database"
	"github.com/edgard/ollamabot/internal/ollama"
)

func textMessage(text string) *models.Message {
	return &models.Message{
		ID:   10,
		Chat: models.Chat{ID: 5},
		From: &models.User{ID: 42, Username: "alice"},
		Text: text,
	}
}

func activeUser() *database.User {
	return &database.User{ID: 1, TelegramID: "42", IsActive: true}
}

func inactiveUser() *database.User {
	return &database.User{ID: 1, TelegramID: "42", IsActive: false}
}

func TestChatHandler_UnidentifiedSender(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "hello"}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	msg := textMessage("hi")
	msg.From = nil
	h.process(context.Background(), tg, msg)

	if gen.callCount() != 0 {
		t.Errorf("generator invoked %d times for an unidentified sender, want 0", gen.callCount())
	}
	if store.upserts != 0 {
		t.Errorf("store upserted %d times for an unidentified sender, want 0", store.upserts)
	}
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != h.deps.Config.Messages.Unidentified {
		t.Errorf("sent = %v, want exactly one %q reply", texts, h.deps.Config.Messages.Unidentified)
	}
}

func TestChatHandler_InactiveUserGated(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: inactiveUser()}
	gen := &fakeGenerator{reply: "hello"}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("hi"))

	if gen.callCount() != 0 {
		t.Errorf("generator invoked %d times for an inactive user, want 0", gen.callCount())
	}
	if store.upserts != 1 {
		t.Errorf("store upserted %d times, want 1 (identity refresh happens before the gate)", store.upserts)
	}
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != h.deps.Config.Messages.ActivationRequired {
		t.Errorf("sent = %v, want exactly one activation-required reply", texts)
	}
}

func TestChatHandler_UpsertRefreshesUsername(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "hello"}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("hi"))

	if store.lastUsername != "alice" {
		t.Errorf("upserted username = %q, want alice", store.lastUsername)
	}
}

func TestChatHandler_MissingModelConfig(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "hello"}
	tg := &fakeTransport{}
	deps := testDeps(store, gen)
	deps.Config.Ollama.Model = ""
	h := chatHandler{deps}

	h.process(context.Background(), tg, textMessage("hi"))

	if gen.callCount() != 0 {
		t.Errorf("generator invoked %d times without a configured model, want 0", gen.callCount())
	}
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != deps.Config.Messages.ConfigError {
		t.Errorf("sent = %v, want exactly one configuration-error reply", texts)
	}
}

func TestChatHandler_SuccessEditsPlaceholder(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "the answer"}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("question?"))

	if gen.callCount() != 1 {
		t.Fatalf("generator invoked %d times, want exactly 1", gen.callCount())
	}
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != h.deps.Config.Messages.Thinking {
		t.Fatalf("sent = %v, want only the placeholder", texts)
	}
	if len(tg.edits) != 1 || tg.edits[0].text != "the answer" {
		t.Errorf("edits = %v, want the placeholder replaced with the final text", tg.edits)
	}
	if len(tg.deletes) != 0 {
		t.Errorf("deletes = %v, want none on the edit path", tg.deletes)
	}
}

func TestChatHandler_GenerationFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{err: &ollama.StatusError{Code: http.StatusBadGateway, Detail: "connection refused"}}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("question?"))

	if gen.callCount() != 1 {
		t.Fatalf("generator invoked %d times, want exactly 1 (no retry)", gen.callCount())
	}

	// Exactly one reply beyond the placeholder: the apology replaces it.
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != h.deps.Config.Messages.Thinking {
		t.Errorf("sent = %v, want only the placeholder", texts)
	}
	if len(tg.edits) != 1 || tg.edits[0].text != h.deps.Config.Messages.GeneralError {
		t.Errorf("edits = %v, want exactly one generic apology", tg.edits)
	}
}

func TestChatHandler_EmptyReplyFallback(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: ""}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("question?"))

	if len(tg.edits) != 1 || tg.edits[0].text != h.deps.Config.Messages.EmptyReply {
		t.Errorf("edits = %v, want the empty-reply fallback text", tg.edits)
	}
}

func TestChatHandler_EditFallbackToFreshMessage(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "the answer"}
	tg := &fakeTransport{editErr: context.DeadlineExceeded}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("question?"))

	texts := tg.sentTexts()
	if len(texts) != 2 {
		t.Fatalf("sent %d messages, want 2 (placeholder + fallback reply)", len(texts))
	}
	if texts[1] != "the answer" {
		t.Errorf("fallback message = %q, want the final text", texts[1])
	}
	if len(tg.deletes) != 1 {
		t.Errorf("deletes = %v, want the placeholder deleted best-effort", tg.deletes)
	}
}

func TestChatHandler_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{user: activeUser(), upsertErr: context.DeadlineExceeded}
	gen := &fakeGenerator{reply: "hello"}
	tg := &fakeTransport{}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("hi"))

	if gen.callCount() != 0 {
		t.Errorf("generator invoked %d times after a store failure, want 0", gen.callCount())
	}
	texts := tg.sentTexts()
	if len(texts) != 1 || texts[0] != h.deps.Config.Messages.GeneralError {
		t.Errorf("sent = %v, want exactly one generic apology", texts)
	}
}

func TestChatHandler_PlaceholderSendFailure(t *testing.T) {
	t.Parallel()

	// A failed placeholder send must not stop generation, and delivery
	// must go through the fresh-message path instead of an edit.
	store := &fakeStore{user: activeUser()}
	gen := &fakeGenerator{reply: "the answer"}
	tg := &fakeTransport{sendErr: context.DeadlineExceeded}
	h := chatHandler{testDeps(store, gen)}

	h.process(context.Background(), tg, textMessage("question?"))

	if gen.callCount() != 1 {
		t.Errorf("generator invoked %d times, want 1", gen.callCount())
	}

	// With no placeholder to replace, nothing may be edited or deleted.
	if len(tg.edits) != 0 || len(tg.deletes) != 0 {
		t.Errorf("edits = %v, deletes = %v, want none without a placeholder", tg.edits, tg.deletes)
	}
}
