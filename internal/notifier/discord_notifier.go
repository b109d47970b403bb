package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultDiscordTimeout = 20 * time.Second

// DiscordNotifier posts notifications to a Discord webhook.
type DiscordNotifier struct {
	webhookURL     string
	mentionRoleIDs []string
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewDiscordNotifier creates a new DiscordNotifier. A nil client gets a default one with a 20s timeout.
func NewDiscordNotifier(webhookURL string, mentionRoleIDs []string, httpClient *http.Client, logger zerolog.Logger) *DiscordNotifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultDiscordTimeout}
	}
	return &DiscordNotifier{
		webhookURL:     webhookURL,
		mentionRoleIDs: mentionRoleIDs,
		httpClient:     httpClient,
		logger:         logger.With().Str("component", "DiscordNotifier").Logger(),
	}
}

// Name implements Sender.
func (dn *DiscordNotifier) Name() string {
	return "discord"
}

// Send posts msg as a JSON webhook payload.
func (dn *DiscordNotifier) Send(ctx context.Context, msg Message) error {
	payloadJSON, err := json.Marshal(FormatDiscordPayload(msg, dn.mentionRoleIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dn.webhookURL, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord notification failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	dn.logger.Debug().Int("status_code", resp.StatusCode).Str("kind", msg.Kind).Msg("Discord notification sent")
	return nil
}
