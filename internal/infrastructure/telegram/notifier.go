package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsSearchEngine/internal/ports"
)

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*Notifier)(nil)

// Dial authenticates the bot token against the Telegram API.
func Dial(botToken string, chatID int64) (*Notifier, error) {
	return DialEndpoint(botToken, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second})
}

// DialEndpoint is Dial against a custom endpoint format ("…/bot%s/%s").
func DialEndpoint(botToken string, chatID int64, endpoint string, client *http.Client) (*Notifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &Notifier{api: api, chatID: chatID}, nil
}

// PublishDigest posts the digest as plain text, split across messages when too long.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	for _, chunk := range splitMessage(digest, maxMessageRunes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.DisableWebPagePreview = true
		if _, err := n.api.Send(msg); err != nil {
			return fmt.Errorf("send digest: %w", err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		window := string(runes[:limit])
		cut := strings.LastIndex(window, "\n")
		if cut <= 0 {
			cut = len(window)
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
