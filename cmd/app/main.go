package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tefillin-reminder-bot/internal/config"
	pg "tefillin-reminder-bot/internal/infra/db/postgres"
	"tefillin-reminder-bot/internal/infra/logging"
	"tefillin-reminder-bot/internal/infra/metrics"
	red "tefillin-reminder-bot/internal/infra/redis"
	"tefillin-reminder-bot/internal/infra/sched"
	"tefillin-reminder-bot/internal/infra/telegram"
	"tefillin-reminder-bot/internal/infra/web"
	"tefillin-reminder-bot/internal/infra/zmanim"
	"tefillin-reminder-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	// ---- Halachic calendar ----
	oracle, err := zmanim.NewService(cfg.Zmanim, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("zmanim service init failed")
	}
	loc := oracle.Location()

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	actionRepo := pg.NewActionLogRepo(pool)
	statsRepo := pg.NewStatsRepo(pool)
	snoozeRepo := pg.NewSnoozeRepo(pool)
	stateRepo := red.NewStateRepo(redisClient)
	lease := red.NewLease(redisClient, logger)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, actionRepo, logger)
	completionUC := usecase.NewCompletionUseCase(userRepo, actionRepo, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, actionRepo, statsRepo, logger)

	// ---- Telegram ----
	bot, err := telegram.NewBot(&cfg.Bot, telegram.Deps{
		Users:       userUC,
		Completions: completionUC,
		Stats:       statsUC,
		State:       stateRepo,
		Oracle:      oracle,
		Location:    loc,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}

	// The reminder pipeline delivers through the bot, and the snooze use
	// case fires back through it, so these are wired after the bot exists.
	reminderUC := usecase.NewReminderUseCase(userRepo, actionRepo, bot, oracle, logger)
	snoozeRunner := sched.NewSnoozeRunner(snoozeRepo, loc, logger)
	snoozeUC := usecase.NewSnoozeUseCase(snoozeRepo, snoozeRunner, reminderUC, oracle, cfg.Reminder.SunsetSnoozeMargin, logger)
	snoozeRunner.SetFireFunc(snoozeUC.Fire)
	bot.AttachSnoozes(snoozeUC)

	// ---- HTTP surface (health, metrics, admin API) ----
	// Runs on every instance regardless of leadership.
	webSrv := web.NewServer(pool, redisClient, statsUC, cfg.Web.Port, cfg.Web.AdminAPIKey, logger)
	go func() {
		if err := webSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Leader-gated work ----
	reminderWorker := sched.NewReminderWorker(cfg.Reminder.PollInterval, loc, reminderUC, logger)
	refreshWorker := sched.NewRefreshWorker(cfg.Reminder.RefreshAt, loc, oracle, statsUC, actionRepo, logger)
	keeper := sched.NewLeaseKeeper(lease, cfg.Reminder.LeaseTTL, cfg.Reminder.LeaseDisabled, logger)

	keeperDone := make(chan struct{})
	go func() {
		defer close(keeperDone)
		_ = keeper.Run(ctx, func(leadCtx context.Context) {
			snoozeRunner.Start(leadCtx)
			go func() { _ = reminderWorker.Run(leadCtx) }()
			go func() { _ = refreshWorker.Run(leadCtx) }()
			if err := bot.StartPolling(leadCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		})
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	select {
	case <-keeperDone:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("lease keeper did not stop in time")
	}

	shutdownCtx, sdCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer sdCancel()
	if err := webSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
