package notifier

// Discord formatting constants
const (
	DiscordUsername         = "hashwatch"
	ChangeEmbedColor        = 0x6F42C1 // Purple for content changes
	NewFileEmbedColor       = 0x5BC0DE // Blue for first sightings
	WarningEmbedColor       = 0xF0AD4E
	CriticalErrorEmbedColor = 0xDC3545
)

// Text limits
const (
	MaxEmbedFieldLength   = 1024 // Discord rejects longer field values
	MaxErrorTextLength    = 900
	MaxSingleErrorLength  = 200
	MaxErrorSampleCount   = 5
	DefaultSMTPFromSender = "hashwatch@localhost"
)

// Message kinds
const (
	KindChange     = "change"
	KindRunFailure = "run_failure"
	KindCritical   = "critical"
)
