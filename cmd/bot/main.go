package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ivanoskov/equilibra/internal/app"
	"github.com/ivanoskov/equilibra/internal/bot"
	"github.com/ivanoskov/equilibra/internal/config"
	"github.com/ivanoskov/equilibra/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	logger := logging.New(os.Getenv("LOG_LEVEL"), "main")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New(cfg.LogLevel, "")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.RequireTelegram(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise")
	}
	defer a.Close()

	b, err := bot.NewBot(cfg.TelegramToken, a.BotDeps(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	scheduler := cron.New()
	if cfg.AlertCheckSchedule != "" {
		if _, err := b.ScheduleAlerts(scheduler, cfg.AlertCheckSchedule); err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule spending alerts")
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info().Str("schedule", cfg.AlertCheckSchedule).Msg("spending alert checks scheduled")
	}

	logger.Info().Str("backend", cfg.DataBackend).Msg("bot started")
	if err := b.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("bot stopped with error")
		return
	}
	logger.Info().Msg("shutdown complete")
}
