package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rivalwatch/internal/jobs"
	"rivalwatch/internal/model"
	"rivalwatch/internal/scoring"
	"rivalwatch/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to RivalWatch!

Track what nearby competitors change and get a daily briefing of what matters.

Quick start:
1. /addlocation <name> | <address> | <website> - register your venue
2. /addcompetitor <location_id> <name> | <address> | <website> - track a competitor
3. /briefing - today's insights

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Locations:
/addlocation <name> | <address> | <website> - register a venue
/locations - show your venues

Competitors:
/competitors <location_id> - list tracked competitors
/addcompetitor <location_id> <name> | <address> | <website> - track a competitor
/pause <competitor_id> - stop tracking
/resume <competitor_id> - resume tracking

Insights:
/briefing [location_id] [YYYY-MM-DD] - ranked insights for a day
/refresh <location_id> - regenerate today's insights
/useful <insight_id> - show more like this
/dismiss <insight_id> - show fewer like this`)
}

// ownedLocation returns the location when it exists and belongs to chatID.
func (b *Bot) ownedLocation(ctx context.Context, chatID, id int64) (*model.Location, bool) {
	loc, err := b.store.GetLocation(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.log.Error("get location", "location_id", id, "error", err)
		}
		return nil, false
	}
	return loc, loc.ChatID == chatID
}

func (b *Bot) handleAddLocation(ctx context.Context, chatID int64, args string) {
	parsed, err := ParseLocationArgs(args)
	if err != nil {
		b.reply(chatID, "Usage: /addlocation <name> | <address> | <website>")
		return
	}

	loc := &model.Location{
		Name:    parsed.Name,
		Address: parsed.Address,
		Website: parsed.Website,
		ChatID:  chatID,
	}
	if err := b.store.CreateLocation(ctx, loc); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save location: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Location added!\n#%d %s\nUse /addcompetitor %d <name> | <address> | <website> to track competitors.",
		loc.ID, loc.Name, loc.ID))
}

func (b *Bot) handleLocations(ctx context.Context, chatID int64) {
	locs, err := b.store.ListLocationsByChat(ctx, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	counts := make(map[int64]int, len(locs))
	for _, l := range locs {
		comps, err := b.store.ListCompetitors(ctx, l.ID)
		if err != nil {
			continue
		}
		counts[l.ID] = len(comps)
	}
	b.reply(chatID, FormatLocationList(locs, counts))
}

func (b *Bot) handleCompetitors(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /competitors <location_id>")
		return
	}

	loc, ok := b.ownedLocation(ctx, chatID, id)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Location #%d not found.", id))
		return
	}

	comps, err := b.store.ListCompetitors(ctx, loc.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatCompetitorList(loc, comps))
}

func (b *Bot) handleAddCompetitor(ctx context.Context, chatID int64, args string) {
	parsed, err := ParseCompetitorArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	loc, ok := b.ownedLocation(ctx, chatID, parsed.LocationID)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Location #%d not found.", parsed.LocationID))
		return
	}

	c := &model.Competitor{
		LocationID: loc.ID,
		Name:       parsed.Name,
		Address:    parsed.Address,
		Website:    parsed.Website,
		IsActive:   true,
	}
	if err := b.store.CreateCompetitor(ctx, c); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save competitor: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Competitor C%d %s added to #%d \"%s\".", c.ID, c.Name, loc.ID, loc.Name))
}

func (b *Bot) handleSetActive(ctx context.Context, chatID int64, args string, active bool) {
	verb, cmd := "paused", "pause"
	if active {
		verb, cmd = "resumed", "resume"
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /%s <competitor_id>", cmd))
		return
	}

	c, err := b.store.GetCompetitor(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Competitor C%d not found.", id))
		return
	}
	if _, ok := b.ownedLocation(ctx, chatID, c.LocationID); !ok {
		b.reply(chatID, fmt.Sprintf("Competitor C%d not found.", id))
		return
	}

	c.IsActive = active
	if err := b.store.UpdateCompetitor(ctx, c); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Competitor C%d \"%s\" %s.", c.ID, c.Name, verb))
}

func (b *Bot) handleBriefing(ctx context.Context, chatID int64, args string) {
	locID, dateKey, err := ParseBriefingArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	if dateKey == "" {
		dateKey = b.today()
	}

	if locID == 0 {
		locs, err := b.store.ListLocationsByChat(ctx, chatID)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("Error: %v", err))
			return
		}
		switch len(locs) {
		case 0:
			b.reply(chatID, FormatLocationList(nil, nil))
			return
		case 1:
			locID = locs[0].ID
		default:
			b.chooseLocation(chatID, locs)
			return
		}
	}

	if _, ok := b.ownedLocation(ctx, chatID, locID); !ok {
		b.reply(chatID, fmt.Sprintf("Location #%d not found.", locID))
		return
	}

	br, err := b.briefings.Build(ctx, locID, model.ChatConsumer(chatID), dateKey)
	if err != nil {
		b.log.Error("build briefing", "location_id", locID, "date_key", dateKey, "error", err)
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatBriefing(br))
}

func (b *Bot) chooseLocation(chatID int64, locs []model.Location) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(locs))
	for _, l := range locs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.Name, fmt.Sprintf("%s:%d", cmdBriefing, l.ID)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "Which location?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send location choice", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleRefresh(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /refresh <location_id>")
		return
	}

	loc, ok := b.ownedLocation(ctx, chatID, id)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Location #%d not found.", id))
		return
	}

	if err := jobs.EnqueueGenerate(ctx, b.store, loc.ID, b.today(), 0); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Regenerating insights for #%d \"%s\". Use /briefing %d shortly.", loc.ID, loc.Name, loc.ID))
}

func (b *Bot) handleFeedback(ctx context.Context, chatID int64, args string, useful bool) {
	cmd, status := cmdDismiss, model.StatusDismissed
	if useful {
		cmd, status = cmdUseful, model.StatusUseful
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /%s <insight_id>", cmd))
		return
	}

	rec, err := b.store.GetInsight(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Insight #%d not found.", id))
		return
	}
	if _, ok := b.ownedLocation(ctx, chatID, rec.LocationID); !ok {
		b.reply(chatID, fmt.Sprintf("Insight #%d not found.", id))
		return
	}
	if rec.Status == status {
		b.reply(chatID, fmt.Sprintf("Insight #%d is already marked %s.", id, status))
		return
	}

	consumer := model.ChatConsumer(chatID)
	pref, err := b.store.GetPreference(ctx, consumer, rec.InsightType)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p := scoring.NewPreference(consumer, rec.InsightType)
		pref = &p
	case err != nil:
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	next := scoring.ApplyFeedback(*pref, useful, b.now())
	if err := b.store.UpsertPreference(ctx, &next); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if err := b.store.SetInsightStatus(ctx, rec.ID, status); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.briefings.InvalidateConsumer(consumer)

	b.log.Info("feedback",
		"insight_id", rec.ID,
		"insight_type", rec.InsightType,
		"consumer", consumer,
		"useful", useful,
		"weight", next.Weight,
	)

	text := fmt.Sprintf("Insight #%d marked %s. Weight for %s is now %.1f.", rec.ID, status, rec.InsightType, next.Weight)
	if scoring.Suppressed(next.Weight) {
		text += "\nInsights of this type are now muted."
	}
	b.reply(chatID, text)
}
