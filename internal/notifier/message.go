package notifier

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks a notification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Field is a labelled value rendered as an embed field or a "Name: Value" text line.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a channel-independent notification.
type Message struct {
	Kind      string
	Subject   string
	Summary   string
	URL       string
	Severity  Severity
	Fields    []Field
	Timestamp time.Time

	FirstSighting bool // Change alert for a URL with no stored hash
}

// Text renders the message as plain text for e-mail bodies.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString(m.Summary)
	b.WriteString("\n\n")
	for _, f := range m.Fields {
		if strings.Contains(f.Value, "\n") {
			fmt.Fprintf(&b, "%s:\n%s\n", f.Name, f.Value)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	if !m.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Time: %s\n", m.Timestamp.UTC().Format(time.RFC3339))
	}
	return b.String()
}
