package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/aleister1102/hashwatch/internal/models"
)

// Sender delivers a Message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NotificationHelper fans notifications out to every configured channel.
// Delivery is best-effort: failures are logged and returned as *NotifyError.
type NotificationHelper struct {
	senders []Sender
	cfg     config.NotificationConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewNotificationHelper creates a new NotificationHelper.
func NewNotificationHelper(cfg config.NotificationConfig, logger zerolog.Logger, senders ...Sender) *NotificationHelper {
	return &NotificationHelper{
		senders: senders,
		cfg:     cfg,
		logger:  logger.With().Str("component", "NotificationHelper").Logger(),
		now:     time.Now,
	}
}

// NewNotificationHelperFromConfig wires the e-mail channel when an alert address is set and
// the Discord channel when a webhook is set.
func NewNotificationHelperFromConfig(cfg *config.RunConfig, httpClient *http.Client, logger zerolog.Logger) *NotificationHelper {
	var senders []Sender
	if cfg.AlertsEnabled() {
		if cfg.Notification.SMTP.Host == "" {
			logger.Warn().Str("alert_email", cfg.AlertEmail).Msg("ALERT_EMAIL is set but SMTP_HOST is not, e-mail alerts will fail")
		}
		senders = append(senders, NewEmailNotifier(cfg.Notification.SMTP, cfg.AlertEmail, logger))
	}
	if cfg.Notification.DiscordWebhookURL != "" {
		senders = append(senders, NewDiscordNotifier(cfg.Notification.DiscordWebhookURL, cfg.Notification.MentionRoleIDs, httpClient, logger))
	}
	return NewNotificationHelper(cfg.Notification, logger, senders...)
}

// HasRecipients reports whether any channel is configured.
func (nh *NotificationHelper) HasRecipients() bool {
	return len(nh.senders) > 0
}

// Notify sends a change alert.
func (nh *NotificationHelper) Notify(ctx context.Context, event models.AlertEvent) error {
	return nh.dispatch(ctx, FormatChangeAlert(event))
}

// NotifyRunFailure summarises a run with failed URLs. No-op for successful runs.
func (nh *NotificationHelper) NotifyRunFailure(ctx context.Context, report *models.RunReport) error {
	if report == nil || report.Failed == 0 {
		return nil
	}
	if !nh.cfg.NotifyOnFailure {
		nh.logger.Debug().Msg("Run failure notifications disabled")
		return nil
	}
	return nh.dispatch(ctx, FormatRunFailure(report))
}

// NotifyCritical reports an error that aborted the run.
func (nh *NotificationHelper) NotifyCritical(ctx context.Context, component string, err error) error {
	if err == nil {
		return nil
	}
	if !nh.cfg.NotifyOnCritical {
		nh.logger.Debug().Msg("Critical notifications disabled")
		return nil
	}
	return nh.dispatch(ctx, FormatCriticalError(component, err, nh.now()))
}

func (nh *NotificationHelper) dispatch(ctx context.Context, msg Message) error {
	if !nh.HasRecipients() {
		nh.logger.Debug().Str("kind", msg.Kind).Msg("No notification recipient configured, skipping")
		return nil
	}

	var errs error
	for _, sender := range nh.senders {
		if err := sender.Send(ctx, msg); err != nil {
			nh.logger.Error().Err(err).Str("channel", sender.Name()).Str("kind", msg.Kind).Msg("Failed to send notification")
			errs = multierr.Append(errs, &NotifyError{Channel: sender.Name(), Kind: msg.Kind, Err: err})
			continue
		}
		nh.logger.Info().Str("channel", sender.Name()).Str("kind", msg.Kind).Str("subject", msg.Subject).Msg("Notification sent")
	}
	return errs
}
