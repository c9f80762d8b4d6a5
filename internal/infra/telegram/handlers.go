package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/metrics"
	"tefillin-reminder-bot/internal/infra/texts"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		metrics.IncCommand(msg.Command())
		return b.handleCommand(ctx, msg)
	}

	// A pending conversational state takes priority over menu buttons.
	state, err := b.state.GetState(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("reading conversation state failed")
	}
	switch state {
	case repository.StateAwaitingCustomTime:
		return b.handleCustomTimeInput(ctx, userID, text)
	case repository.StateAwaitingCustomSnooze:
		return b.handleCustomSnoozeInput(ctx, userID, text)
	}

	return b.handleMenuText(ctx, userID, text, msg.From.FirstName)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	switch msg.Command() {
	case "start":
		return b.cmdStart(ctx, userID, msg.From.FirstName)
	case "menu":
		return b.sendMainMenu(ctx, userID, "")
	case "settings":
		return b.sendSettings(ctx, userID)
	case "stats":
		return b.sendStats(ctx, userID, 0)
	case "skip":
		return b.cmdSkip(ctx, userID)
	case "usage":
		return b.cmdUsage(ctx, userID, msg.CommandArguments())
	case "cancel":
		if err := b.state.ClearState(ctx, userID); err != nil {
			b.log.Error().Err(err).Int64("user_id", userID).Msg("clearing state failed")
		}
		return b.SendMessage(ctx, userID, texts.Cancelled)
	case "help":
		return b.SendMessage(ctx, userID, texts.Help)
	default:
		return b.SendMessage(ctx, userID, texts.Help)
	}
}

func (b *Bot) cmdStart(ctx context.Context, userID int64, name string) error {
	u, err := b.users.Get(ctx, userID)
	switch {
	case err == nil:
		return b.sendMainMenu(ctx, userID, texts.GreetingHeader(name, u.DailyTime, u.Streak))
	case errors.Is(err, domain.ErrNotFound):
		sunset := b.oracle.SunsetTime(ctx, b.now())
		return b.SendKeyboard(ctx, userID, texts.Welcome(name, sunset.Format("15:04")),
			texts.TimeSelectionKeyboard(false))
	default:
		return err
	}
}

// sendMainMenu pairs the persistent reply keyboard with the inline action
// menu, the same two-message shape users see after /start.
func (b *Bot) sendMainMenu(ctx context.Context, userID int64, header string) error {
	if header == "" {
		header = texts.MainMenuTitle
	}
	reply := tgbotapi.NewMessage(userID, header)
	reply.ReplyMarkup = mainReplyKeyboard()
	if _, err := b.api.Send(reply); err != nil {
		return wrapSendError(err)
	}
	return b.SendKeyboard(ctx, userID, texts.ActionsMenu, texts.MainMenuKeyboard())
}

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("הנחתי ✅")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("קריאת שמע 📖")),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🕐 שינוי שעה"),
			tgbotapi.NewKeyboardButton("🌇 תזכורת שקיעה"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📊 סטטיסטיקות"),
			tgbotapi.NewKeyboardButton("⚙️ הגדרות"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// handleMenuText maps the reply-keyboard buttons, which arrive as plain
// text, onto the same actions as the inline menu.
func (b *Bot) handleMenuText(ctx context.Context, userID int64, text, name string) error {
	switch text {
	case "הנחתי ✅":
		return b.markDone(ctx, userID, 0)
	case "קריאת שמע 📖":
		return b.SendKeyboard(ctx, userID, texts.Shema, texts.BackToMenuKeyboard())
	case "🕐 שינוי שעה":
		return b.SendKeyboard(ctx, userID, texts.ChooseTime, texts.TimeSelectionKeyboard(true))
	case "🌇 תזכורת שקיעה":
		return b.sendSunsetSettings(ctx, userID, 0)
	case "📊 סטטיסטיקות":
		return b.sendStats(ctx, userID, 0)
	case "⚙️ הגדרות":
		return b.sendSettings(ctx, userID)
	}

	if model.ValidDailyTime(text) {
		return b.SendMessage(ctx, userID,
			fmt.Sprintf("נראה שרצית לקבוע שעה: %s\nהשתמש ב-/settings כדי לשנות את השעה היומית.", text))
	}
	return b.SendMessage(ctx, userID, "שלום! 👋\nהשתמש ב-/menu או ב-/help לעזרה.")
}

// handleCustomTimeInput consumes free text while awaiting a custom time.
// Bad input re-prompts without clearing the state.
func (b *Bot) handleCustomTimeInput(ctx context.Context, userID int64, text string) error {
	hhmm, ok := parseTimeInput(text)
	if !ok {
		return b.SendMessage(ctx, userID, texts.InvalidTime)
	}

	if _, _, err := b.users.RegisterWithTime(ctx, userID, hhmm, b.loc.String()); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("setting custom time failed")
		return b.SendMessage(ctx, userID, texts.GenericError)
	}
	if err := b.state.ClearState(ctx, userID); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("clearing state failed")
	}
	return b.SendMessage(ctx, userID, texts.TimeUpdated(hhmm))
}

// handleCustomSnoozeInput consumes a typed number of minutes while awaiting
// a custom snooze. Bad input re-prompts without clearing the state.
func (b *Bot) handleCustomSnoozeInput(ctx context.Context, userID int64, text string) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || minutes <= 0 || minutes > 24*60 {
		return b.SendMessage(ctx, userID, texts.InvalidSnooze)
	}

	if _, err := b.snoozes.Schedule(ctx, userID, minutes, b.now()); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("scheduling custom snooze failed")
		return b.SendMessage(ctx, userID, texts.GenericError)
	}
	if err := b.state.ClearState(ctx, userID); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("clearing state failed")
	}
	return b.SendMessage(ctx, userID, texts.SnoozeConfirm(minutes))
}

// parseTimeInput accepts "HH:MM" or a bare hour ("8" means 08:00) and
// normalizes to two-digit HH:MM.
func parseTimeInput(text string) (string, bool) {
	text = strings.TrimSpace(text)
	var hour, minute int
	if strings.Contains(text, ":") {
		parts := strings.SplitN(text, ":", 2)
		h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return "", false
		}
		hour, minute = h, m
	} else {
		h, err := strconv.Atoi(text)
		if err != nil {
			return "", false
		}
		hour = h
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func (b *Bot) cmdSkip(ctx context.Context, userID int64) error {
	if _, err := b.users.SkipToday(ctx, userID, b.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.SendMessage(ctx, userID, texts.NotRegistered)
		}
		return err
	}
	if err := b.snoozes.Cancel(ctx, userID); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("cancelling snooze failed")
	}
	return b.SendMessage(ctx, userID, texts.SkipConfirm)
}

// cmdUsage is the admin report. The optional argument is the trailing-days
// window.
func (b *Bot) cmdUsage(ctx context.Context, userID int64, args string) error {
	if !b.isAdmin(userID) {
		return b.SendMessage(ctx, userID, texts.AdminsOnly)
	}

	days := 7
	if v, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
		days = v
	}
	rows, summary, days, err := b.stats.Usage(ctx, days, b.now())
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return b.SendMessage(ctx, userID,
			texts.UsageSummaryText(days, summary.TotalActiveUsers, summary.UsersMarkedDone, summary.TotalMarks))
	}

	lines := []string{fmt.Sprintf("📊 שימוש %d ימים אחרונים:", days)}
	for i, row := range rows {
		hours := strings.Join(row.Hours, ", ")
		lines = append(lines, fmt.Sprintf("%d. ID %d — %d ימים — שעות: %s", i+1, row.UserID, row.DaysCount, hours))
	}
	return b.sendChunked(ctx, userID, strings.Join(lines, "\n"))
}

// Telegram caps messages at 4096 chars; long usage reports are split.
func (b *Bot) sendChunked(ctx context.Context, userID int64, text string) error {
	const limit = 3500
	for len(text) > 0 {
		chunk := text
		if len(chunk) > limit {
			cut := strings.LastIndex(chunk[:limit], "\n")
			if cut <= 0 {
				cut = limit
			}
			chunk = chunk[:cut]
		}
		if err := b.SendMessage(ctx, userID, chunk); err != nil {
			return err
		}
		text = strings.TrimPrefix(text[len(chunk):], "\n")
	}
	return nil
}
