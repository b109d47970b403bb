package notifier

import "fmt"

// NotifyError is returned when a notification channel fails to deliver a message.
// Callers log it; it never changes the outcome of a run.
type NotifyError struct {
	Channel string
	Kind    string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify %s via %s: %v", e.Kind, e.Channel, e.Err)
}

// Unwrap returns the underlying error.
func (e *NotifyError) Unwrap() error {
	return e.Err
}
