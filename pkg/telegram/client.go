package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config holds the Bot API endpoint settings.
type Config struct {
	APIURL   string
	BotToken string
	Timeout  time.Duration
}

// Client sends messages through the Telegram Bot API.
type Client struct {
	cfg      Config
	endpoint string
	http     *http.Client
}

// NewClient builds a client; a zero Timeout means 5 seconds and an empty
// APIURL means the public Bot API.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	endpoint := tgbotapi.APIEndpoint
	if base := strings.TrimRight(cfg.APIURL, "/"); base != "" {
		endpoint = base + "/bot%s/%s"
	}
	return &Client{
		cfg:      cfg,
		endpoint: endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// contextClient binds every bot request to the caller's context.
type contextClient struct {
	ctx  context.Context
	http *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req.WithContext(c.ctx))
}

// bot is built per call. NewBotAPI would call getMe on construction.
func (c *Client) bot(ctx context.Context) *tgbotapi.BotAPI {
	bot := &tgbotapi.BotAPI{
		Token:  c.cfg.BotToken,
		Client: contextClient{ctx: ctx, http: c.http},
	}
	bot.SetAPIEndpoint(c.endpoint)
	return bot
}

// SendMessage posts text to chatID. Any non-ok answer is an error.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.cfg.BotToken == "" {
		return errors.New("telegram bot token is not configured")
	}

	if _, err := c.bot(ctx).Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("telegram returned error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
