package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestKeepTyping_StopsOnCancel(t *testing.T) {
	t.Parallel()

	tg := &fakeTransport{}
	ctx, cancel := context.WithCancel(context.Background())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	done := make(chan struct{})
	go func() {
		keepTyping(ctx, tg, 5, 10*time.Millisecond, log)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepTyping did not stop after cancellation")
	}

	tg.mu.Lock()
	count := tg.typing
	tg.mu.Unlock()
	if count < 2 {
		t.Errorf("typing asserted %d times, want the initial action plus periodic re-assertions", count)
	}
}
