package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cmdBriefing    = "briefing"
	cmdCompetitors = "competitors"
	cmdRefresh     = "refresh"
	cmdUseful      = "useful"
	cmdDismiss     = "dismiss"
)

func feedbackKeyboard(insightID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Useful", fmt.Sprintf("%s:%d", cmdUseful, insightID)),
			tgbotapi.NewInlineKeyboardButtonData("Dismiss", fmt.Sprintf("%s:%d", cmdDismiss, insightID)),
		),
	)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return
	}

	action := parts[0]
	idStr := parts[1]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	var userID int64
	var username string
	if cb.From != nil {
		userID, username = cb.From.ID, cb.From.UserName
	}
	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", userID,
		"username", username,
	)

	switch action {
	case cmdUseful:
		b.handleFeedback(ctx, chatID, idStr, true)
	case cmdDismiss:
		b.handleFeedback(ctx, chatID, idStr, false)
	case cmdBriefing:
		b.handleBriefing(ctx, chatID, idStr)
	case cmdCompetitors:
		b.handleCompetitors(ctx, chatID, idStr)
	case cmdRefresh:
		b.handleRefresh(ctx, chatID, idStr)
	}
}
