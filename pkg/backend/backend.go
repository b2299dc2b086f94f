package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"CallWaitingAI/pkg/outbound"

	"github.com/sirupsen/logrus"
)

// LeadNotification is the payload the CallWaitingAI backend expects on its
// leads endpoint.
type LeadNotification struct {
	Name      string `json:"name"`
	Business  string `json:"business"`
	Phone     string `json:"phone"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

type IBackend interface {
	PostLead(ctx context.Context, lead LeadNotification) error
}

type backendClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func New(log *logrus.Logger) (IBackend, error) {
	baseURL := os.Getenv("BACKEND_API_URL")
	if baseURL == "" {
		return nil, outbound.ErrNotConfigured
	}

	return &backendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}, nil
}

func (b *backendClient) PostLead(ctx context.Context, lead LeadNotification) error {
	const op = "backend.post_lead"

	if lead.Timestamp == "" {
		lead.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return outbound.NewMalformed(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/leads", bytes.NewReader(body))
	if err != nil {
		return outbound.NewMalformed(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return outbound.Classify(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return outbound.NewProtocol(op, resp.StatusCode, string(raw))
	}

	b.log.WithFields(logrus.Fields{
		"name":     lead.Name,
		"business": lead.Business,
	}).Info("Lead forwarded to backend")

	return nil
}
