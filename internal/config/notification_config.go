package config

// SMTPConfig defines the mail relay used for alert e-mails
type SMTPConfig struct {
	Host     string `json:"host,omitempty" yaml:"host,omitempty" env:"SMTP_HOST"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" env:"SMTP_PORT" validate:"min=1,max=65535"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" env:"SMTP_USERNAME"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" env:"SMTP_PASSWORD"`
	From     string `json:"from,omitempty" yaml:"from,omitempty" env:"SMTP_FROM" validate:"omitempty,alertaddr"`
}

// NotificationConfig defines configuration for notifications
type NotificationConfig struct {
	SMTP              SMTPConfig `json:"smtp,omitempty" yaml:"smtp,omitempty"`
	DiscordWebhookURL string     `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" env:"DISCORD_WEBHOOK_URL" validate:"omitempty,httpurl"`
	MentionRoleIDs    []string   `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
	NotifyOnFailure   bool       `json:"notify_on_failure" yaml:"notify_on_failure"`
	NotifyOnCritical  bool       `json:"notify_on_critical" yaml:"notify_on_critical"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		SMTP:             SMTPConfig{Port: DefaultSMTPPort},
		MentionRoleIDs:   []string{},
		NotifyOnFailure:  true,
		NotifyOnCritical: true,
	}
}

func (c *NotificationConfig) applyEnv(l *envLoader) {
	apply(l, EnvSMTPHost, &c.SMTP.Host, l.env.str)
	apply(l, EnvSMTPPort, &c.SMTP.Port, l.env.Int)
	apply(l, EnvSMTPUsername, &c.SMTP.Username, l.env.str)
	apply(l, EnvSMTPPassword, &c.SMTP.Password, l.env.str)
	apply(l, EnvSMTPFrom, &c.SMTP.From, l.env.str)
	apply(l, EnvDiscordWebhookURL, &c.DiscordWebhookURL, l.env.str)
}
