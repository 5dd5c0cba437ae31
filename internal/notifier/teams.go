package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fileflow-backend/internal/models"
)

// TeamsNotifier posts to a Microsoft Teams incoming webhook.
type TeamsNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewTeamsNotifier(webhookURL string, client *http.Client) *TeamsNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TeamsNotifier{webhookURL: webhookURL, client: client}
}

func (n *TeamsNotifier) Channel() string {
	return models.ChannelTeams
}

func (n *TeamsNotifier) Notify(ctx context.Context, fileID, status string, errs map[string]any) (SendResult, error) {
	if n.webhookURL == "" {
		return SendResult{}, fmt.Errorf("teams: %w", ErrNotConfigured)
	}

	payload, err := json.Marshal(map[string]string{"text": FormatMessage(fileID, status, errs)})
	if err != nil {
		return SendResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("teams webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return SendResult{}, fmt.Errorf("teams webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return SendResult{SentAt: time.Now().UTC()}, nil
}
