package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rivalwatch/internal/briefing"
	"rivalwatch/internal/config"
	"rivalwatch/internal/model"
	"rivalwatch/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram operator surface: it serves briefings, records
// feedback on insights and pushes critical insights.
type Bot struct {
	api       telegramAPI
	store     storage.Storage
	cfg       *config.Config
	briefings *briefing.Builder
	log       *slog.Logger
	now       func() time.Time
}

// New creates a Bot with the given Telegram token, storage, briefing
// builder and config.
func New(token string, store storage.Storage, briefings *briefing.Builder, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:       api,
		store:     store,
		cfg:       cfg,
		briefings: briefings,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				from := update.CallbackQuery.From
				if from == nil || !b.cfg.IsUserAllowed(from.ID) {
					continue
				}
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// NotifyInsight pushes one insight to an operator chat with feedback
// buttons.
func (b *Bot) NotifyInsight(_ context.Context, chatID int64, loc model.Location, rec model.InsightRecord) error {
	msg := tgbotapi.NewMessage(chatID, FormatInsight(loc.Name, rec))
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = feedbackKeyboard(rec.ID)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send insight: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) today() string {
	return b.now().Format(model.DateKeyLayout)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "addlocation":
		b.handleAddLocation(ctx, chatID, args)
	case "locations":
		b.handleLocations(ctx, chatID)
	case cmdCompetitors:
		b.handleCompetitors(ctx, chatID, args)
	case "addcompetitor":
		b.handleAddCompetitor(ctx, chatID, args)
	case "pause":
		b.handleSetActive(ctx, chatID, args, false)
	case "resume":
		b.handleSetActive(ctx, chatID, args, true)
	case cmdBriefing:
		b.handleBriefing(ctx, chatID, args)
	case cmdRefresh:
		b.handleRefresh(ctx, chatID, args)
	case cmdUseful:
		b.handleFeedback(ctx, chatID, args, true)
	case cmdDismiss:
		b.handleFeedback(ctx, chatID, args, false)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
