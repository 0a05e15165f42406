// Package config loads the service configuration from the environment.
//
// Values come from the process environment, optionally seeded from a .env
// file, and are validated once at startup. Every command calls Load and
// fails fast on an error.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=json console"`
	LogFile   string `envconfig:"LOG_FILE"`
	DBPath    string `envconfig:"DB_PATH" default:"data/water-alert.db" validate:"required"`

	// DangerLevels maps location name to danger level in cm,
	// e.g. "Varanasi:72,Haridwar:293"
	DangerLevels map[string]float64 `envconfig:"DANGER_LEVELS" default:"Varanasi:72,Haridwar:293,Prayagraj:84" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`

	Prediction PredictionConfig
	Telegram   TelegramConfig
	Email      EmailConfig
	Delivery   DeliveryConfig
	Ingest     IngestConfig
	Server     ServerConfig
}

// PredictionConfig selects the trend model and the analysis window
type PredictionConfig struct {
	Model  string        `envconfig:"PREDICTION_MODEL" default:"exponential" validate:"oneof=exponential linear"`
	Window time.Duration `envconfig:"PREDICTION_WINDOW" default:"168h" validate:"gt=0"`
}

// TelegramConfig holds the bot credentials
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
}

// EmailConfig holds SMTP delivery settings. Email delivery is disabled
// when User or Password is empty.
type EmailConfig struct {
	User     string `envconfig:"EMAIL_USER"`
	Password string `envconfig:"EMAIL_PASS"`
	From     string `envconfig:"EMAIL_FROM"`
	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com" validate:"required,hostname"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587" validate:"gt=0,lt=65536"`
}

// Enabled reports whether SMTP credentials are configured
func (c EmailConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}

// DeliveryConfig bounds a single notification attempt
type DeliveryConfig struct {
	Timeout time.Duration `envconfig:"DELIVERY_TIMEOUT" default:"10s" validate:"gt=0"`
}

// IngestConfig configures where readings come from and how often
type IngestConfig struct {
	Schedule      string     `envconfig:"INGEST_SCHEDULE" default:"0 * * * *" validate:"required"`
	Sources       SourceList `envconfig:"INGEST_SOURCES"`
	CSVPath       string     `envconfig:"INGEST_CSV"`
	CSVLocation   string     `envconfig:"INGEST_CSV_LOCATION" validate:"required_with=CSVPath"`
	Simulate      bool       `envconfig:"SIMULATE" default:"false"`
	SimulatorSeed uint64     `envconfig:"SIMULATOR_SEED"`
}

// ServerConfig holds the HTTP API listen address
type ServerConfig struct {
	Addr string `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
}

// Source is one gauge page to scrape for a location
type Source struct {
	Location string
	URL      string
}

// SourceList decodes "Location=URL;Location=URL". Map syntax cannot be used
// because URLs contain colons.
type SourceList []Source

// Decode implements envconfig.Decoder
func (s *SourceList) Decode(value string) error {
	var out SourceList
	for _, item := range strings.Split(value, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		loc, url, ok := strings.Cut(item, "=")
		loc, url = strings.TrimSpace(loc), strings.TrimSpace(url)
		if !ok || loc == "" || url == "" {
			return fmt.Errorf("invalid source %q, want Location=URL", item)
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("source %s: %q is not an http(s) URL", loc, url)
		}
		out = append(out, Source{Location: loc, URL: url})
	}
	*s = out
	return nil
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Thresholds builds the danger level table
func (c *Config) Thresholds() (*entities.Thresholds, error) {
	return entities.NewThresholds(c.DangerLevels)
}
