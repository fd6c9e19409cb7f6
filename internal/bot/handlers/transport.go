package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// transport is the narrow slice of the Telegram API the handlers use.
// Wrapping *bot.Bot behind it keeps the message flow testable.
type transport interface {
	// sendMessage sends text to the chat, optionally replying to a message
	// (replyTo 0 means no reply), and returns the sent message ID.
	sendMessage(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
	editMessage(ctx context.Context, chatID int64, messageID int, text string) error
	deleteMessage(ctx context.Context, chatID int64, messageID int) error
	sendTyping(ctx context.Context, chatID int64) error
}

// botTransport adapts *bot.Bot to the transport interface.
type botTransport struct {
	b *bot.Bot
}

func (t botTransport) sendMessage(ctx context.Context, chatID int64, text string, replyTo int) (int, error) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if replyTo > 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}
	sent, err := t.b.SendMessage(ctx, params)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (t botTransport) editMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := t.b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	return err
}

func (t botTransport) deleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := t.b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

func (t botTransport) sendTyping(ctx context.Context, chatID int64) error {
	_, err := t.b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	return err
}
