package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/adapter"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/infra/metrics"
	"tefillin-reminder-bot/internal/infra/texts"
)

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	// Ack first so the client stops its spinner whatever happens next.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack failed")
	}

	userID := q.From.ID
	messageID := 0
	if q.Message != nil {
		messageID = q.Message.MessageID
	}
	data := q.Data
	metrics.IncCommand(callbackMetricName(data))

	switch {
	case data == texts.CallbackDone:
		return b.markDone(ctx, userID, messageID)
	case data == texts.CallbackTimeCustom:
		return b.startCustomTimeInput(ctx, userID, messageID)
	case strings.HasPrefix(data, "time_"):
		return b.selectTime(ctx, userID, messageID, strings.TrimPrefix(data, "time_"), q.From.FirstName)
	case data == texts.CallbackSnoozeCustom:
		return b.startCustomSnoozeInput(ctx, userID, messageID)
	case data == texts.CallbackSnoozeSunset:
		return b.snoozeUntilSunset(ctx, userID, messageID)
	case strings.HasPrefix(data, "snooze_"):
		return b.snooze(ctx, userID, messageID, strings.TrimPrefix(data, "snooze_"))
	case data == texts.CallbackSunsetSettings:
		return b.sendSunsetSettings(ctx, userID, messageID)
	case strings.HasPrefix(data, "sunset_"):
		return b.setSunsetOffset(ctx, userID, messageID, strings.TrimPrefix(data, "sunset_"))
	case data == texts.CallbackChangeTime:
		return b.reply(ctx, userID, messageID, texts.ChooseTime, texts.TimeSelectionKeyboard(true))
	case data == texts.CallbackStats:
		return b.sendStats(ctx, userID, messageID)
	case data == texts.CallbackShowSettings, data == texts.CallbackBackToSettings:
		return b.sendSettings(ctx, userID)
	case data == texts.CallbackSkipToday:
		return b.skipToday(ctx, userID, messageID)
	case data == texts.CallbackShowShema:
		return b.reply(ctx, userID, messageID, texts.Shema, texts.BackToMenuKeyboard())
	case data == texts.CallbackBackToMenu:
		return b.sendMainMenu(ctx, userID, "")
	default:
		b.log.Warn().Str("data", data).Msg("unrecognized callback")
		return b.SendMessage(ctx, userID, texts.UnknownAction)
	}
}

// callbackMetricName collapses parameterized tokens to one label value.
func callbackMetricName(data string) string {
	if i := strings.IndexByte(data, '_'); i > 0 {
		if _, err := strconv.Atoi(data[i+1:]); err == nil {
			return data[:i]
		}
	}
	if strings.HasPrefix(data, "time_") {
		return "time"
	}
	return data
}

// reply edits the originating message when possible, otherwise sends fresh.
func (b *Bot) reply(ctx context.Context, userID int64, messageID int, text string, rows [][]adapter.Button) error {
	if messageID > 0 {
		return b.EditMessage(ctx, userID, messageID, text, rows)
	}
	if len(rows) > 0 {
		return b.SendKeyboard(ctx, userID, text, rows)
	}
	return b.SendMessage(ctx, userID, text)
}

func (b *Bot) markDone(ctx context.Context, userID int64, messageID int) error {
	streak, err := b.completions.MarkDone(ctx, userID, b.now())
	switch {
	case err == nil:
		// A pending snooze about today is moot now.
		if cerr := b.snoozes.Cancel(ctx, userID); cerr != nil {
			b.log.Error().Err(cerr).Int64("user_id", userID).Msg("cancelling snooze failed")
		}
		return b.reply(ctx, userID, messageID, texts.DoneConfirmation(streak), nil)
	case errors.Is(err, domain.ErrAlreadyDone):
		return b.reply(ctx, userID, messageID, texts.AlreadyDone, nil)
	case errors.Is(err, domain.ErrNotFound):
		return b.reply(ctx, userID, messageID, texts.NotRegistered, nil)
	default:
		return err
	}
}

func (b *Bot) startCustomTimeInput(ctx context.Context, userID int64, messageID int) error {
	if err := b.state.SetState(ctx, userID, repository.StateAwaitingCustomTime); err != nil {
		return err
	}
	return b.reply(ctx, userID, messageID, texts.CustomTimePrompt, nil)
}

func (b *Bot) selectTime(ctx context.Context, userID int64, messageID int, hhmm, name string) error {
	if !model.ValidDailyTime(hhmm) {
		return b.reply(ctx, userID, messageID, texts.InvalidTime, nil)
	}
	if _, _, err := b.users.RegisterWithTime(ctx, userID, hhmm, b.loc.String()); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("time selection failed")
		return b.reply(ctx, userID, messageID, texts.GenericError, nil)
	}
	return b.reply(ctx, userID, messageID, texts.TimeSet(hhmm), nil)
}

// startCustomSnoozeInput shows the picker and also accepts a typed number of
// minutes while the state is pending.
func (b *Bot) startCustomSnoozeInput(ctx context.Context, userID int64, messageID int) error {
	if err := b.state.SetState(ctx, userID, repository.StateAwaitingCustomSnooze); err != nil {
		return err
	}
	return b.reply(ctx, userID, messageID, texts.ChooseSnooze, texts.SnoozePickerKeyboard())
}

func (b *Bot) snooze(ctx context.Context, userID int64, messageID int, arg string) error {
	minutes, err := strconv.Atoi(arg)
	if err != nil {
		return b.reply(ctx, userID, messageID, texts.UnknownAction, nil)
	}
	if _, err := b.snoozes.Schedule(ctx, userID, minutes, b.now()); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return b.reply(ctx, userID, messageID, texts.UnknownAction, nil)
		}
		return err
	}
	// Picking from the picker makes any pending free-text prompt moot.
	if err := b.state.ClearState(ctx, userID); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("clearing state failed")
	}
	return b.reply(ctx, userID, messageID, texts.SnoozeConfirm(minutes), nil)
}

func (b *Bot) snoozeUntilSunset(ctx context.Context, userID int64, messageID int) error {
	fireAt, sunset, err := b.snoozes.ScheduleUntilSunset(ctx, userID, b.now())
	if err != nil {
		if errors.Is(err, domain.ErrSunsetTooClose) {
			return b.reply(ctx, userID, messageID, texts.SunsetTooClose, nil)
		}
		return err
	}
	return b.reply(ctx, userID, messageID,
		texts.SunsetSnoozeConfirm(fireAt.Format("15:04"), sunset.Format("15:04")), nil)
}

func (b *Bot) sendSunsetSettings(ctx context.Context, userID int64, messageID int) error {
	u, err := b.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(ctx, userID, messageID, texts.NotRegistered, nil)
		}
		return err
	}
	return b.reply(ctx, userID, messageID, texts.SunsetSettings(u.SunsetReminder), texts.SunsetSettingsKeyboard())
}

func (b *Bot) setSunsetOffset(ctx context.Context, userID int64, messageID int, arg string) error {
	minutes, err := strconv.Atoi(arg)
	if err != nil {
		return b.reply(ctx, userID, messageID, texts.UnknownAction, nil)
	}
	if err := b.users.SetSunsetReminder(ctx, userID, minutes); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(ctx, userID, messageID, texts.NotRegistered, nil)
		}
		return err
	}
	return b.reply(ctx, userID, messageID, texts.SunsetSettingUpdated(minutes), nil)
}

func (b *Bot) skipToday(ctx context.Context, userID int64, messageID int) error {
	if _, err := b.users.SkipToday(ctx, userID, b.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(ctx, userID, messageID, texts.NotRegistered, nil)
		}
		return err
	}
	if err := b.snoozes.Cancel(ctx, userID); err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("cancelling snooze failed")
	}
	return b.reply(ctx, userID, messageID, texts.SkipConfirm, nil)
}

func (b *Bot) sendSettings(ctx context.Context, userID int64) error {
	u, err := b.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.SendMessage(ctx, userID, texts.NotRegistered)
		}
		return err
	}
	return b.SendKeyboard(ctx, userID, texts.Settings(u.DailyTime, u.SunsetReminder, u.Streak), texts.SettingsKeyboard())
}

func (b *Bot) sendStats(ctx context.Context, userID int64, messageID int) error {
	now := b.now()
	u, err := b.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(ctx, userID, messageID, texts.NotRegistered, nil)
		}
		return err
	}
	stats, err := b.stats.UserStats(ctx, userID, now)
	if err != nil {
		return err
	}
	sunsetToday := b.oracle.SunsetTime(ctx, now).Format("15:04")
	text := texts.UserStats(stats.Streak, stats.DailyTime, stats.SunsetReminder,
		u.CreatedAt.Format("02/01/2006"), stats.DaysSinceSignup, stats.LastDone, sunsetToday)
	return b.reply(ctx, userID, messageID, text, texts.BackToSettingsKeyboard())
}
