package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	dbOperationTimeout = 5 * time.Second
	sendMessageTimeout = 10 * time.Second
	generationTimeout  = 90 * time.Second
	typingInterval     = 4 * time.Second
)

// NewChatHandler returns the default handler: any plain text message is
// forwarded to the model and the generated reply is delivered back.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	h := chatHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.Text == "" {
			return
		}
		h.process(ctx, botTransport{b}, update.Message)
	}
}

type chatHandler struct {
	deps HandlerDeps
}

// process runs the per-message state machine: identify, upsert, gate,
// dispatch, generate, deliver. It terminates on the first reply; every
// failure path still produces exactly one reply so the sender is never
// left unanswered.
func (h chatHandler) process(ctx context.Context, tg transport, msg *models.Message) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")
	msgs := deps.Config.Messages
	chatID := msg.Chat.ID

	if msg.From == nil {
		log.WarnContext(ctx, "Message without a resolvable sender", "chat_id", chatID)
		h.reply(ctx, tg, chatID, msg.ID, msgs.Unidentified)
		return
	}

	telegramID := strconv.FormatInt(msg.From.ID, 10)

	dbCtx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	user, err := deps.Store.UpsertUser(dbCtx, telegramID, msg.From.Username)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to upsert user", "telegram_id", telegramID, "error", err)
		h.reply(ctx, tg, chatID, msg.ID, msgs.GeneralError)
		return
	}

	if !user.IsActive {
		log.InfoContext(ctx, "Inactive user, skipping generation", "telegram_id", telegramID)
		h.reply(ctx, tg, chatID, msg.ID, msgs.ActivationRequired)
		return
	}

	model := deps.Config.Ollama.Model
	if model == "" {
		log.ErrorContext(ctx, "Model name is not configured, cannot generate")
		h.reply(ctx, tg, chatID, msg.ID, msgs.ConfigError)
		return
	}

	// Typing indicator and placeholder live for the duration of the call.
	typingCtx, stopTyping := context.WithCancel(ctx)
	defer stopTyping()
	go keepTyping(typingCtx, tg, chatID, typingInterval, log)

	placeholderID := 0
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	placeholderID, err = tg.sendMessage(sendCtx, chatID, msgs.Thinking, msg.ID)
	cancel()
	if err != nil {
		log.WarnContext(ctx, "Failed to send placeholder message", "error", err, "chat_id", chatID)
		placeholderID = 0
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	replyText, err := deps.Ollama.Reply(genCtx, model, msg.Text, nil)
	cancel()
	stopTyping()

	if err != nil {
		log.ErrorContext(ctx, "Generation failed", "error", err, "chat_id", chatID, "model", model)
		h.deliver(ctx, tg, chatID, msg.ID, placeholderID, msgs.GeneralError)
		return
	}
	if replyText == "" {
		log.WarnContext(ctx, "Model returned an empty reply", "chat_id", chatID, "model", model)
		replyText = msgs.EmptyReply
	}

	h.deliver(ctx, tg, chatID, msg.ID, placeholderID, replyText)
}

// deliver replaces the placeholder with the final text. If the edit fails
// or no placeholder exists, the text goes out as a fresh message and the
// placeholder is deleted best-effort.
func (h chatHandler) deliver(ctx context.Context, tg transport, chatID int64, replyTo, placeholderID int, text string) {
	log := h.deps.Logger.With("handler", "chat")

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if placeholderID > 0 {
		err := tg.editMessage(sendCtx, chatID, placeholderID, text)
		if err == nil {
			return
		}
		log.DebugContext(ctx, "In-place edit failed, sending a fresh message", "error", err, "chat_id", chatID)

		if _, err := tg.sendMessage(sendCtx, chatID, text, replyTo); err != nil {
			log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
			return
		}
		if err := tg.deleteMessage(sendCtx, chatID, placeholderID); err != nil {
			log.DebugContext(ctx, "Failed to delete placeholder", "error", err, "chat_id", chatID)
		}
		return
	}

	if _, err := tg.sendMessage(sendCtx, chatID, text, replyTo); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

// reply sends a single fixed message, logging delivery failures.
func (h chatHandler) reply(ctx context.Context, tg transport, chatID int64, replyTo int, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := tg.sendMessage(sendCtx, chatID, text, replyTo); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
