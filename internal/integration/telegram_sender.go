package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAddressPrefix marks a contact address as a Telegram chat
const TelegramAddressPrefix = "telegram:"

// TelegramAddress renders the contact address of a chat
func TelegramAddress(chatID int64) string {
	return TelegramAddressPrefix + strconv.FormatInt(chatID, 10)
}

// ParseTelegramAddress extracts the chat ID from a telegram:<id> address
func ParseTelegramAddress(address string) (int64, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(address), TelegramAddressPrefix)
	if !ok {
		return 0, fmt.Errorf("%q is not a telegram address", address)
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", raw, err)
	}
	return chatID, nil
}

// chatSender is the part of *tgbotapi.BotAPI the sender needs
type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender delivers notifications as Telegram chat messages
type TelegramSender struct {
	bot chatSender
}

// NewTelegramSender creates a sender on top of an authorized bot
func NewTelegramSender(bot *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{bot: bot}
}

// Send posts subject and body to the chat in address. The bot API call has
// no context of its own, so the wait is abandoned when ctx ends.
func (s *TelegramSender) Send(ctx context.Context, address, subject, body string) error {
	chatID, err := ParseTelegramAddress(address)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, subject+"\n\n"+body)
	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram send abandoned: %w", ctx.Err())
	}
}
