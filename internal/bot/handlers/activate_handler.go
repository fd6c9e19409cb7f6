package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewActivateHandler returns the handler for /activate <secret>. On a
// matching secret the sender's activation flag is set; re-activation is a
// no-op that replies with the same confirmation.
func NewActivateHandler(deps HandlerDeps) bot.HandlerFunc {
	h := activateHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		h.process(ctx, botTransport{b}, update.Message)
	}
}

type activateHandler struct {
	deps HandlerDeps
}

func (h activateHandler) process(ctx context.Context, tg transport, msg *models.Message) {
	deps := h.deps
	log := deps.Logger.With("handler", "activate")
	msgs := deps.Config.Messages
	chatID := msg.Chat.ID

	if msg.From == nil {
		log.WarnContext(ctx, "Activation attempt without a resolvable sender", "chat_id", chatID)
		h.reply(ctx, tg, chatID, msg.ID, msgs.Unidentified)
		return
	}

	secretWord := extractArgument(msg.Text)
	if secretWord == "" {
		h.reply(ctx, tg, chatID, msg.ID, msgs.ActivateUsage)
		return
	}

	configured := deps.Config.Telegram.SecretWord
	if configured == "" {
		// Missing shared secret is an operator mistake, not a user one.
		log.ErrorContext(ctx, "SECRET_WORD is not configured, activation is impossible")
		h.reply(ctx, tg, chatID, msg.ID, msgs.GeneralError)
		return
	}

	if secretWord != configured {
		log.InfoContext(ctx, "Activation denied", "user_id", msg.From.ID)
		h.reply(ctx, tg, chatID, msg.ID, msgs.ActivateDenied)
		return
	}

	telegramID := strconv.FormatInt(msg.From.ID, 10)

	dbCtx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	user, err := deps.Store.UpsertUser(dbCtx, telegramID, msg.From.Username)
	if err != nil {
		log.ErrorContext(ctx, "Failed to upsert user during activation", "telegram_id", telegramID, "error", err)
		h.reply(ctx, tg, chatID, msg.ID, msgs.GeneralError)
		return
	}

	if _, err := deps.Store.SetUserActive(dbCtx, user.ID, true); err != nil {
		log.ErrorContext(ctx, "Failed to set activation flag", "id", user.ID, "error", err)
		h.reply(ctx, tg, chatID, msg.ID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "User activated", "id", user.ID, "telegram_id", telegramID)
	h.reply(ctx, tg, chatID, msg.ID, msgs.ActivateConfirm)
}

func (h activateHandler) reply(ctx context.Context, tg transport, chatID int64, replyTo int, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := tg.sendMessage(sendCtx, chatID, text, replyTo); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

// extractArgument returns the text after the command itself, e.g. the
// secret in "/activate hunter2".
func extractArgument(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}
