package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/aleister1102/hashwatch/internal/models"
)

type recordingSender struct {
	mu       sync.Mutex
	name     string
	err      error
	messages []Message
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

func sampleEvent() models.AlertEvent {
	return models.AlertEvent{
		URLIdentifier: "URL_1",
		URL:           "https://cdn.example.com/app.js",
		OldHash:       strings.Repeat("a", 64),
		NewHash:       strings.Repeat("b", 64),
		Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sampleFailedReport() *models.RunReport {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return models.NewRunReport("run-1", start, start.Add(3*time.Second), []models.CheckResult{
		{Entry: models.URLEntry{Identifier: "URL_1", URL: "https://a.test/f"}, State: models.CheckStateChanged},
		{Entry: models.URLEntry{Identifier: "URL_2", URL: "https://b.test/f"}, State: models.CheckStateFailed, Err: errors.New("fetch https://b.test/f: Timeout")},
	})
}

func TestNotificationHelper_NoRecipientSkips(t *testing.T) {
	nh := NewNotificationHelper(config.NewDefaultNotificationConfig(), zerolog.Nop())

	assert.False(t, nh.HasRecipients())
	assert.NoError(t, nh.Notify(context.Background(), sampleEvent()))
	assert.NoError(t, nh.NotifyRunFailure(context.Background(), sampleFailedReport()))
	assert.NoError(t, nh.NotifyCritical(context.Background(), "HashStore", errors.New("boom")))
}

func TestNotificationHelper_Notify(t *testing.T) {
	sender := &recordingSender{name: "fake"}
	nh := NewNotificationHelper(config.NewDefaultNotificationConfig(), zerolog.Nop(), sender)

	require.NoError(t, nh.Notify(context.Background(), sampleEvent()))
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, KindChange, msg.Kind)
	assert.Contains(t, msg.Subject, "URL_1")
	assert.Equal(t, "https://cdn.example.com/app.js", msg.URL)
	assert.False(t, msg.FirstSighting)
	assert.Contains(t, msg.Text(), strings.Repeat("a", 64))
	assert.Contains(t, msg.Text(), strings.Repeat("b", 64))
}

func TestNotificationHelper_FailuresAreReturnedNotFatal(t *testing.T) {
	failing := &recordingSender{name: "broken", err: errors.New("relay down")}
	working := &recordingSender{name: "ok"}
	nh := NewNotificationHelper(config.NewDefaultNotificationConfig(), zerolog.Nop(), failing, working)

	err := nh.Notify(context.Background(), sampleEvent())
	require.Error(t, err)

	var notifyErr *NotifyError
	require.ErrorAs(t, err, &notifyErr)
	assert.Equal(t, "broken", notifyErr.Channel)
	assert.Equal(t, KindChange, notifyErr.Kind)
	assert.Len(t, working.messages, 1)
}

func TestNotificationHelper_RunFailure(t *testing.T) {
	sender := &recordingSender{name: "fake"}
	cfg := config.NewDefaultNotificationConfig()
	nh := NewNotificationHelper(cfg, zerolog.Nop(), sender)

	start := time.Now()
	ok := models.NewRunReport("run-ok", start, start, []models.CheckResult{{State: models.CheckStateUnchanged}})
	require.NoError(t, nh.NotifyRunFailure(context.Background(), ok))
	assert.Empty(t, sender.messages)

	require.NoError(t, nh.NotifyRunFailure(context.Background(), sampleFailedReport()))
	require.Len(t, sender.messages, 1)
	assert.Equal(t, KindRunFailure, sender.messages[0].Kind)
	assert.Contains(t, sender.messages[0].Subject, "1 of 2 URLs failed")
	assert.Contains(t, sender.messages[0].Text(), "URL_2")

	cfg.NotifyOnFailure = false
	disabled := NewNotificationHelper(cfg, zerolog.Nop(), sender)
	require.NoError(t, disabled.NotifyRunFailure(context.Background(), sampleFailedReport()))
	assert.Len(t, sender.messages, 1)
}

func TestNotificationHelper_Critical(t *testing.T) {
	sender := &recordingSender{name: "fake"}
	nh := NewNotificationHelper(config.NewDefaultNotificationConfig(), zerolog.Nop(), sender)

	require.NoError(t, nh.NotifyCritical(context.Background(), "HashStore", errors.New("access denied")))
	require.Len(t, sender.messages, 1)
	assert.Equal(t, SeverityCritical, sender.messages[0].Severity)
	assert.Contains(t, sender.messages[0].Text(), "access denied")
}

func TestNewNotificationHelperFromConfig(t *testing.T) {
	runCfg := &config.RunConfig{Settings: *config.NewDefaultSettings()}
	assert.False(t, NewNotificationHelperFromConfig(runCfg, nil, zerolog.Nop()).HasRecipients())

	runCfg.AlertEmail = "ops@example.com"
	nh := NewNotificationHelperFromConfig(runCfg, nil, zerolog.Nop())
	require.Len(t, nh.senders, 1)
	assert.Equal(t, "email", nh.senders[0].Name())

	runCfg.Notification.DiscordWebhookURL = "https://discord.example.com/api/webhooks/1/x"
	nh = NewNotificationHelperFromConfig(runCfg, nil, zerolog.Nop())
	require.Len(t, nh.senders, 2)
	assert.Equal(t, "discord", nh.senders[1].Name())
}

func TestEmailNotifier_Send(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotBody string
		gotAuth smtp.Auth
	)
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "user", Password: "pass", From: "alerts@example.com"}
	en := NewEmailNotifier(cfg, "ops@example.com", zerolog.Nop()).
		WithSendFunc(func(_ context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotBody = addr, a, from, to, string(msg)
			return nil
		})

	require.NoError(t, en.Send(context.Background(), FormatChangeAlert(sampleEvent())))

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "alerts@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)
	assert.Contains(t, gotBody, "To: ops@example.com\r\n")
	assert.Contains(t, gotBody, "Subject: [hashwatch] Content changed: URL_1\r\n")
	assert.Contains(t, gotBody, "\r\n\r\nThe content of https://cdn.example.com/app.js has changed.")
}

func TestEmailNotifier_Errors(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		en := NewEmailNotifier(config.SMTPConfig{Port: 25}, "ops@example.com", zerolog.Nop())
		assert.ErrorIs(t, en.Send(context.Background(), Message{}), errSMTPHostMissing)
	})

	t.Run("relay failure", func(t *testing.T) {
		relayErr := errors.New("connection refused")
		en := NewEmailNotifier(config.SMTPConfig{Host: "localhost", Port: 25}, "ops@example.com", zerolog.Nop()).
			WithSendFunc(func(context.Context, string, smtp.Auth, string, []string, []byte) error { return relayErr })
		assert.ErrorIs(t, en.Send(context.Background(), Message{}), relayErr)
	})

	t.Run("cancelled context", func(t *testing.T) {
		called := false
		en := NewEmailNotifier(config.SMTPConfig{Host: "localhost", Port: 25}, "ops@example.com", zerolog.Nop()).
			WithSendFunc(func(context.Context, string, smtp.Auth, string, []string, []byte) error { called = true; return nil })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, en.Send(ctx, Message{}), context.Canceled)
		assert.False(t, called)
	})
}

func TestBuildEmail_StripsHeaderInjection(t *testing.T) {
	body := string(buildEmail("a@example.com", "b@example.com", Message{Subject: "line1\r\nBcc: evil@example.com"}))
	headers := body[:strings.Index(body, "\r\n\r\n")]
	assert.NotContains(t, headers, "\r\nBcc:")
}

func TestDiscordNotifier_Send(t *testing.T) {
	var received models.DiscordMessagePayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dn := NewDiscordNotifier(server.URL, []string{"42"}, server.Client(), zerolog.Nop())
	require.NoError(t, dn.Send(context.Background(), FormatRunFailure(sampleFailedReport())))

	require.Len(t, received.Embeds, 1)
	assert.Equal(t, DiscordUsername, received.Username)
	assert.Equal(t, WarningEmbedColor, received.Embeds[0].Color)
	assert.Contains(t, received.Content, "<@&42>")
	require.NotNil(t, received.AllowedMentions)
	assert.Equal(t, []string{"42"}, received.AllowedMentions.Roles)
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	dn := NewDiscordNotifier(server.URL, nil, server.Client(), zerolog.Nop())
	err := dn.Send(context.Background(), FormatChangeAlert(sampleEvent()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFormatDiscordPayload(t *testing.T) {
	event := sampleEvent()
	event.OldHash = ""
	payload := FormatDiscordPayload(FormatChangeAlert(event), []string{"1"})

	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Equal(t, NewFileEmbedColor, embed.Color)
	assert.Equal(t, event.URL, embed.URL)
	assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
	assert.Empty(t, payload.Content, "change alerts do not ping roles")

	long := FormatCriticalError("HashStore", errors.New(strings.Repeat("x", 5000)), time.Now())
	for _, f := range FormatDiscordPayload(long, nil).Embeds[0].Fields {
		assert.LessOrEqual(t, len(f.Value), MaxEmbedFieldLength)
	}
}

func TestCompressMultipleErrors(t *testing.T) {
	var errs []string
	for i := 0; i < 8; i++ {
		errs = append(errs, "failure")
	}
	out := compressMultipleErrors(errs, MaxErrorTextLength)
	assert.Contains(t, out, "1. failure")
	assert.Contains(t, out, "... and 3 more errors")
	assert.Empty(t, compressMultipleErrors(nil, 100))
}
