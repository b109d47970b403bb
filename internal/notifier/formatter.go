package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/hashwatch/internal/models"
)

// FormatChangeAlert builds the alert sent when a monitored file changes.
func FormatChangeAlert(event models.AlertEvent) Message {
	msg := Message{
		Kind:      KindChange,
		URL:       event.URL,
		Severity:  SeverityInfo,
		Timestamp: event.Timestamp,
	}

	if event.IsFirstSighting() {
		msg.FirstSighting = true
		msg.Subject = fmt.Sprintf("[hashwatch] New file tracked: %s", event.URLIdentifier)
		msg.Summary = fmt.Sprintf("%s is now being tracked. No previous hash was stored.", event.URL)
		msg.Fields = []Field{
			{Name: "Identifier", Value: event.URLIdentifier, Inline: true},
			{Name: "Hash", Value: event.NewHash},
		}
		return msg
	}

	msg.Subject = fmt.Sprintf("[hashwatch] Content changed: %s", event.URLIdentifier)
	msg.Summary = fmt.Sprintf("The content of %s has changed.", event.URL)
	msg.Fields = []Field{
		{Name: "Identifier", Value: event.URLIdentifier, Inline: true},
		{Name: "Old hash", Value: event.OldHash},
		{Name: "New hash", Value: event.NewHash},
	}
	return msg
}

// FormatRunFailure summarises a run that ended with failed URLs.
func FormatRunFailure(report *models.RunReport) Message {
	failed := report.FailedResults()

	samples := make([]string, 0, len(failed))
	for _, r := range failed {
		samples = append(samples, fmt.Sprintf("%s (%s): %s", r.Entry.Identifier, r.Entry.URL, r.ErrorMessage()))
	}

	return Message{
		Kind:     KindRunFailure,
		Subject:  fmt.Sprintf("[hashwatch] %d of %d URLs failed", report.Failed, report.Total()),
		Summary:  fmt.Sprintf("Run %s finished with status %s.", report.RunID, report.Status),
		Severity: SeverityWarning,
		Fields: []Field{
			{Name: "Changed", Value: fmt.Sprintf("%d", report.Changed), Inline: true},
			{Name: "Unchanged", Value: fmt.Sprintf("%d", report.Unchanged), Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d", report.Failed), Inline: true},
			{Name: "Duration", Value: formatDuration(report.Duration()), Inline: true},
			{Name: "Errors", Value: compressMultipleErrors(samples, MaxErrorTextLength)},
		},
		Timestamp: report.FinishedAt,
	}
}

// FormatCriticalError reports a failure that stopped the run.
func FormatCriticalError(component string, err error, at time.Time) Message {
	return Message{
		Kind:     KindCritical,
		Subject:  fmt.Sprintf("[hashwatch] Critical error in %s", component),
		Summary:  "The run was aborted before any URL was checked.",
		Severity: SeverityCritical,
		Fields: []Field{
			{Name: "Component", Value: component, Inline: true},
			{Name: "Error", Value: truncateString(err.Error(), MaxErrorTextLength)},
		},
		Timestamp: at,
	}
}

// truncateString truncates a string to maxLength with ellipsis
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}

// compressMultipleErrors lists up to MaxErrorSampleCount errors within maxLength
func compressMultipleErrors(errorMessages []string, maxLength int) string {
	if len(errorMessages) == 0 {
		return ""
	}

	var lines []string
	totalLength := 0
	for i, errMsg := range errorMessages {
		if i >= MaxErrorSampleCount {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, truncateString(strings.TrimSpace(errMsg), MaxSingleErrorLength))
		if totalLength+len(line) > maxLength {
			break
		}
		lines = append(lines, line)
		totalLength += len(line) + 1
	}

	if remaining := len(errorMessages) - len(lines); remaining > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more errors", remaining))
	}
	return strings.Join(lines, "\n")
}

// formatDuration formats duration truncated to milliseconds
func formatDuration(d time.Duration) string {
	return d.Truncate(time.Millisecond).String()
}
