package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/water-alert/internal/app"
	"github.com/abelzeko/water-alert/internal/config"
	"github.com/abelzeko/water-alert/internal/logging"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, "scrapper")
	defer logger.Sync()
	logger.Info("Starting Water Alert scrapper...")

	a, err := app.New(cfg, app.Options{Ingest: true}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := startScheduler(ctx, cfg.Ingest.Schedule, a.UseCase.RefreshReadings, logger)
	if err != nil {
		logger.Fatal("Failed to set up cron job", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Shutting down scrapper")
	<-c.Stop().Done()
}

// startScheduler runs refresh once and then on every tick of schedule
func startScheduler(ctx context.Context, schedule string, refresh func(context.Context) error, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := refresh(ctx); err != nil {
			logger.Error("Scheduled reading refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	// Run immediately on startup
	if err := refresh(ctx); err != nil {
		logger.Error("Initial reading refresh failed", zap.Error(err))
	}

	logger.Info("Scrapper has been scheduled", zap.String("schedule", schedule))
	c.Start()
	return c, nil
}
