package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/config"
	"tefillin-reminder-bot/internal/domain/ports/adapter"
	"tefillin-reminder-bot/internal/domain/ports/repository"
	"tefillin-reminder-bot/internal/usecase"
)

// Compile-time check
var _ adapter.Messenger = (*Bot)(nil)

// Bot is the tgbotapi adapter: it polls updates with a small worker pool and
// implements the outbound Messenger port used by the reminder pipeline.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	adminIDsMap map[int64]struct{}

	users       usecase.UserUseCase
	completions usecase.CompletionUseCase
	snoozes     usecase.SnoozeUseCase
	stats       usecase.StatsUseCase
	state       repository.StateRepository
	oracle      usecase.TimeOracle
	loc         *time.Location

	updateWorkers int
	log           *zerolog.Logger
}

type Deps struct {
	Users       usecase.UserUseCase
	Completions usecase.CompletionUseCase
	Stats       usecase.StatsUseCase
	State       repository.StateRepository
	Oracle      usecase.TimeOracle
	Location    *time.Location
}

func NewBot(cfg *config.BotConfig, deps Deps, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	compLog := logger.With().Str("component", "TelegramBot").Logger()
	return &Bot{
		api:           api,
		cfg:           cfg,
		adminIDsMap:   adminMap,
		users:         deps.Users,
		completions:   deps.Completions,
		stats:         deps.Stats,
		state:         deps.State,
		oracle:        deps.Oracle,
		loc:           deps.Location,
		updateWorkers: workers,
		log:           &compLog,
	}, nil
}

// AttachSnoozes closes the wiring loop: the snooze pipeline delivers
// through this bot, so it is constructed after it. Must be called before
// StartPolling.
func (b *Bot) AttachSnoozes(s usecase.SnoozeUseCase) {
	b.snoozes = s
}

// StartPolling consumes Telegram updates until ctx ends. Updates fan out to
// a fixed worker pool so one slow handler does not stall the queue.
func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := b.handleUpdate(ctx, update); err != nil {
						b.log.Error().Err(err).Int("worker", workerID).Msg("update handling failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	b.log.Info().Int("workers", b.updateWorkers).Msg("polling started")
	<-ctx.Done()
	b.api.StopReceivingUpdates()
	wg.Wait()
	return ctx.Err()
}

// SendMessage sends plain text to a chat.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return wrapSendError(err)
}

// SendKeyboard sends text with an inline keyboard.
func (b *Bot) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]adapter.Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(rows) > 0 {
		msg.ReplyMarkup = toInlineMarkup(rows)
	}
	_, err := b.api.Send(msg)
	return wrapSendError(err)
}

// EditMessage rewrites a previously sent message in place.
func (b *Bot) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.Button) error {
	var err error
	if len(rows) > 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toInlineMarkup(rows))
		_, err = b.api.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		_, err = b.api.Send(edit)
	}
	return wrapSendError(err)
}

func toInlineMarkup(rows [][]adapter.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		out = append(out, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// wrapSendError tags a blocked-recipient failure so the scheduler can
// deactivate the user instead of retrying.
func wrapSendError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "blocked by the user") {
		return errors.Join(adapter.ErrBlocked, err)
	}
	return err
}

func (b *Bot) isAdmin(tgID int64) bool {
	_, ok := b.adminIDsMap[tgID]
	return ok
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.loc)
}
