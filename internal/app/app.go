// Package app assembles the components shared by every command
package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/abelzeko/water-alert/internal/alerting"
	"github.com/abelzeko/water-alert/internal/config"
	"github.com/abelzeko/water-alert/internal/integration"
	"github.com/abelzeko/water-alert/internal/prediction"
	"github.com/abelzeko/water-alert/internal/repository"
	"github.com/abelzeko/water-alert/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	scraperTimeout     = 30 * time.Second
	breakerMaxFailures = 3
	breakerCooldown    = time.Minute
)

// Options select which external services are connected
type Options struct {
	// Delivery connects the Telegram and e-mail channels
	Delivery bool
	// Ingest wires the configured reading sources
	Ingest bool
}

// App holds the assembled components
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Bot     *tgbotapi.BotAPI // nil unless Delivery is set and a token is configured
	UseCase *usecases.MonitorUseCase

	Readings    *repository.SQLiteReadingRepository
	Subscribers *repository.SQLiteSubscriberRepository
}

// New opens the database and wires the use case
func New(cfg *config.Config, opts Options, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, fmt.Errorf("invalid danger levels: %w", err)
	}

	predictor, err := prediction.New(cfg.Prediction.Model)
	if err != nil {
		return nil, err
	}

	db, err := repository.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	a := &App{
		Config:      cfg,
		DB:          db,
		Readings:    repository.NewSQLiteReadingRepository(db, logger.Named("readings")),
		Subscribers: repository.NewSQLiteSubscriberRepository(db, logger.Named("subscribers")),
	}

	router := &integration.RoutingSender{}
	if opts.Delivery {
		if err := a.connectChannels(router, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	deps := usecases.Deps{
		Readings:        a.Readings,
		Alerts:          repository.NewSQLiteAlertRepository(db, logger.Named("alerts")),
		Subscribers:     a.Subscribers,
		Thresholds:      thresholds,
		Predictor:       predictor,
		Sender:          router,
		Window:          cfg.Prediction.Window,
		DeliveryTimeout: cfg.Delivery.Timeout,
		Logger:          logger.Named("monitor"),
	}
	if opts.Ingest {
		deps.Scraper = integration.NewGaugeScraper(&http.Client{Timeout: scraperTimeout}, time.UTC, logger.Named("scraper"))
		deps.Sources = cfg.Ingest.Sources
		deps.CSVPath = cfg.Ingest.CSVPath
		deps.CSVLocation = cfg.Ingest.CSVLocation
		if cfg.Ingest.Simulate {
			deps.Simulator = integration.NewSimulatedSource(cfg.Ingest.SimulatorSeed)
		}
	}
	a.UseCase = usecases.NewMonitorUseCase(deps)

	return a, nil
}

func (a *App) connectChannels(router *integration.RoutingSender, logger *zap.Logger) error {
	cfg := a.Config

	if cfg.Telegram.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		a.Bot = bot
		router.Telegram = breaker("telegram", integration.NewTelegramSender(bot), logger)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, Telegram delivery disabled")
	}

	if cfg.Email.Enabled() {
		smtpSender := integration.NewSMTPSender(integration.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.User,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
		router.Email = breaker("email", smtpSender, logger)
	} else {
		logger.Warn("EMAIL_USER/EMAIL_PASS are not set, e-mail delivery disabled")
	}
	return nil
}

func breaker(name string, next alerting.Sender, logger *zap.Logger) alerting.Sender {
	return integration.NewBreakerSender(name, next, breakerMaxFailures, breakerCooldown, logger.Named("breaker"))
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}
