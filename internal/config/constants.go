package config

import "time"

// Environment variable names
const (
	EnvDataBucket = "DATA_BUCKET"
	EnvAlertEmail = "ALERT_EMAIL"
	EnvDebug      = "DEBUG"
	EnvURLPrefix  = "URL_"
	EnvConfigPath = "HASHWATCH_CONFIG_PATH"

	EnvFetchTimeout        = "FETCH_TIMEOUT"
	EnvFetchRetries        = "FETCH_RETRIES"
	EnvFetchURLBudget      = "FETCH_URL_BUDGET"
	EnvRunTimeout          = "RUN_TIMEOUT"
	EnvMaxConcurrentChecks = "MAX_CONCURRENT_CHECKS"
	EnvMaxContentSize      = "MAX_CONTENT_SIZE"
	EnvRateLimitPerHost    = "RATE_LIMIT_PER_HOST"
	EnvUserAgent           = "USER_AGENT"
	EnvFetchProxy          = "FETCH_PROXY"

	EnvSMTPHost          = "SMTP_HOST"
	EnvSMTPPort          = "SMTP_PORT"
	EnvSMTPUsername      = "SMTP_USERNAME"
	EnvSMTPPassword      = "SMTP_PASSWORD"
	EnvSMTPFrom          = "SMTP_FROM"
	EnvDiscordWebhookURL = "DISCORD_WEBHOOK_URL"

	EnvLogFile   = "LOG_FILE"
	EnvLogFormat = "LOG_FORMAT"
	EnvLogLevel  = "LOG_LEVEL"

	EnvMetricsTextfile = "METRICS_TEXTFILE"
	EnvHistoryEnabled  = "HISTORY_ENABLED"

	EnvS3Endpoint     = "S3_ENDPOINT"
	EnvS3Region       = "S3_REGION"
	EnvS3UseSSL       = "S3_USE_SSL"
	EnvS3AccessKey    = "S3_ACCESS_KEY"
	EnvS3SecretKey    = "S3_SECRET_KEY"
	EnvS3CreateBucket = "S3_CREATE_BUCKET"
)

// Storage layout
const (
	HashPathPrefix = "hashes/sha256"
	DataPathPrefix = "data"
)

const (
	// Fetch Defaults
	DefaultFetchTimeout     = 30 * time.Second
	DefaultFetchRetries     = 2
	DefaultFetchURLBudget   = 2 * time.Minute
	DefaultFetchBaseDelay   = 500 * time.Millisecond
	DefaultFetchMaxDelay    = 10 * time.Second
	DefaultMaxContentSize   = 10 * 1024 * 1024
	DefaultRateLimitPerHost = 0.0
	DefaultRateLimitBurst   = 1
	DefaultUserAgent        = "hashwatch/1.0 (+https://github.com/aleister1102/hashwatch)"
	DefaultMaxRedirects     = 10

	// Monitor Defaults
	DefaultMaxConcurrentChecks = 5
	DefaultRunTimeout          = 5 * time.Minute
	DefaultHistoryEnabled      = true

	// Notification Defaults
	DefaultSMTPPort = 587

	// Storage Defaults
	DefaultS3Endpoint              = "s3.amazonaws.com"
	DefaultS3UseSSL                = true
	DefaultStorageCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)
