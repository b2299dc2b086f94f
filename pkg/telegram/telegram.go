package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"CallWaitingAI/pkg/outbound"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.telegram.org"

type ITelegram interface {
	// Push sends message to chatID; empty chatID falls back to the
	// configured operator chat. Callers treat failures as best-effort.
	Push(ctx context.Context, chatID, message string) error
}

type telegramClient struct {
	baseURL       string
	botToken      string
	defaultChatID string
	client        *http.Client
	log           *logrus.Logger
}

func New(log *logrus.Logger) (ITelegram, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return nil, outbound.ErrNotConfigured
	}

	baseURL := os.Getenv("TELEGRAM_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &telegramClient{
		baseURL:       baseURL,
		botToken:      token,
		defaultChatID: chatID,
		client:        &http.Client{Timeout: 5 * time.Second},
		log:           log,
	}, nil
}

func (t *telegramClient) Push(ctx context.Context, chatID, message string) error {
	const op = "telegram.push"

	if chatID == "" {
		chatID = t.defaultChatID
	}

	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return outbound.NewMalformed(op, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return outbound.NewMalformed(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return outbound.Classify(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return outbound.NewMalformed(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return outbound.NewProtocol(op, resp.StatusCode, string(raw))
	}

	var ack struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		return outbound.NewMalformed(op, err)
	}
	if !ack.OK {
		return outbound.NewProtocol(op, resp.StatusCode, ack.Description)
	}

	t.log.WithFields(logrus.Fields{
		"chat_id": chatID,
	}).Debug("Telegram alert delivered")

	return nil
}
