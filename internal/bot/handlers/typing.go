package handlers

import (
	"context"
	"log/slog"
	"time"
)

// keepTyping re-asserts the typing indicator until ctx is cancelled.
// Failures never affect the message flow; they are logged at debug level
// at most.
func keepTyping(ctx context.Context, tg transport, chatID int64, interval time.Duration, log *slog.Logger) {
	if err := tg.sendTyping(ctx, chatID); err != nil {
		log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tg.sendTyping(ctx, chatID); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
			}
		}
	}
}
