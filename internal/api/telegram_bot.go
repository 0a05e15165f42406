// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/integration"
	"github.com/abelzeko/water-alert/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const recentAlertsShown = 5

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	useCase *usecases.MonitorUseCase
	logger  *zap.Logger
}

// NewTelegramBot creates a new Telegram bot handler. The BotAPI is shared
// with the Telegram notification sender.
func NewTelegramBot(bot *tgbotapi.BotAPI, useCase *usecases.MonitorUseCase, logger *zap.Logger) *TelegramBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramBot{
		bot:     bot,
		useCase: useCase,
		logger:  logger,
	}
}

// Start listens for and handles Telegram messages until ctx is cancelled
func (t *TelegramBot) Start(ctx context.Context) {
	t.logger.Info("Authorized on Telegram account", zap.String("username", t.bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	t.logger.Info("Bot is now listening for messages")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.logger.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			t.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage processes a Telegram message and sends the reply
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	t.logger.Debug("Received message",
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("text", message.Text),
	)

	msg := tgbotapi.NewMessage(message.Chat.ID, t.reply(ctx, message))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Error sending message", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
	}
}

// reply builds the HTML response to a message
func (t *TelegramBot) reply(ctx context.Context, message *tgbotapi.Message) string {
	if !message.IsCommand() {
		return "I don't understand. Use /help to see available commands."
	}

	args := strings.TrimSpace(message.CommandArguments())
	t.logger.Debug("Handling command", zap.String("command", message.Command()), zap.String("args", args))

	switch message.Command() {
	case "start":
		return "Welcome to the Water Alert bot! Use /status to see current water levels, " +
			"/subscribe to get danger alerts or /help for more information."

	case "help":
		return "Available commands:\n" +
			"/status [location] - Current levels and outlook\n" +
			"/predict [location] - Trend prediction with a chart\n" +
			"/levels - Configured danger levels\n" +
			"/subscribe [loc1,loc2] - Get alerts for locations\n" +
			"/alerts [location] - Recent alert log entries\n" +
			"/help - Show this help message"

	case "status":
		return t.handleStatus(ctx, args)

	case "predict":
		return t.handlePredict(ctx, args)

	case "levels":
		return html.EscapeString(t.useCase.FormatDangerLevels())

	case "subscribe":
		return t.handleSubscribe(ctx, message, args)

	case "alerts":
		return t.handleAlerts(ctx, args)

	default:
		return "Unknown command. Use /help to see available commands."
	}
}

func (t *TelegramBot) handleStatus(ctx context.Context, location string) string {
	if location == "" {
		statuses, err := t.useCase.Overview(ctx)
		if err != nil {
			t.logger.Error("Error building overview", zap.Error(err))
			return "Error fetching water level data. Please try again later."
		}
		return html.EscapeString(t.useCase.FormatOverview(statuses))
	}

	st, err := t.useCase.LocationStatus(ctx, location)
	if err != nil {
		return t.locationError(location, err)
	}
	return html.EscapeString(t.useCase.FormatStatus(st))
}

func (t *TelegramBot) handlePredict(ctx context.Context, location string) string {
	if location == "" {
		return "Please specify a location. Example: /predict Varanasi"
	}

	st, err := t.useCase.LocationStatus(ctx, location)
	if err != nil {
		return t.locationError(location, err)
	}

	var b strings.Builder
	b.WriteString(html.EscapeString(t.useCase.FormatPrediction(st.Location.Name, st.Prediction)))
	if chart := usecases.RenderChart(st.Series, st.Location.DangerLevel); chart != "" {
		b.WriteString("\n\n<pre>")
		b.WriteString(html.EscapeString(chart))
		b.WriteString("</pre>")
	}
	return b.String()
}

func (t *TelegramBot) handleSubscribe(ctx context.Context, message *tgbotapi.Message, args string) string {
	if args == "" {
		return "Please list the locations to follow. Example: /subscribe Varanasi,Prayagraj"
	}

	name := ""
	if message.From != nil {
		name = strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
		if name == "" {
			name = message.From.UserName
		}
	}
	if name == "" {
		name = fmt.Sprintf("chat %d", message.Chat.ID)
	}

	sub, err := t.useCase.Signup(ctx, name, integration.TelegramAddress(message.Chat.ID), strings.Split(args, ","))
	if err != nil {
		if errors.Is(err, entities.ErrUnknownLocation) {
			return html.EscapeString(fmt.Sprintf("%v. Use /levels to see the configured locations.", err))
		}
		t.logger.Error("Error registering subscriber", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
		return "Could not register your subscription. Please try again later."
	}

	t.logger.Info("Subscriber registered", zap.String("id", sub.ID), zap.Strings("locations", sub.Locations))
	return html.EscapeString(fmt.Sprintf("Subscribed to %s. You will get a message whenever a danger level is reported.",
		strings.Join(sub.Locations, ", ")))
}

func (t *TelegramBot) handleAlerts(ctx context.Context, location string) string {
	records, err := t.useCase.RecentAlerts(ctx, location, recentAlertsShown)
	if err != nil {
		return t.locationError(location, err)
	}
	if len(records) == 0 {
		return "No alerts recorded yet."
	}

	var b strings.Builder
	b.WriteString("Recent alerts:\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("• %s %s: %.2f cm, %s\n",
			r.Timestamp.Format(usecases.DisplayTimeLayout), r.Location, r.ObservedLevel, r.Status))
	}
	return html.EscapeString(strings.TrimRight(b.String(), "\n"))
}

func (t *TelegramBot) locationError(location string, err error) string {
	if errors.Is(err, entities.ErrUnknownLocation) {
		return html.EscapeString(fmt.Sprintf("Unknown location %s. Use /levels to see the configured locations.", location))
	}
	t.logger.Error("Error fetching location data", zap.String("location", location), zap.Error(err))
	return "Error fetching water level data. Please try again later."
}
