package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/water-alert/internal/api"
	"github.com/abelzeko/water-alert/internal/app"
	"github.com/abelzeko/water-alert/internal/config"
	"github.com/abelzeko/water-alert/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, "bot")
	defer logger.Sync()
	logger.Info("Starting Water Alert bot...")

	if cfg.Telegram.BotToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	a, err := app.New(cfg, app.Options{Delivery: true}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramBot := api.NewTelegramBot(a.Bot, a.UseCase, logger.Named("telegram"))
	telegramBot.Start(ctx)
}
