package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aleister1102/hashwatch/internal/common"
)

// FetchErrorKind classifies fetch failures
type FetchErrorKind string

const (
	KindTimeout          FetchErrorKind = "Timeout"
	KindConnectionFailed FetchErrorKind = "ConnectionFailed"
	KindHTTPError        FetchErrorKind = "HTTPError"
	KindTooLarge         FetchErrorKind = "TooLarge"
	KindInvalidURL       FetchErrorKind = "InvalidURL"
)

// FetchError is returned for a URL that could not be fetched.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int // Set for KindHTTPError
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.Kind == KindHTTPError {
		msg = fmt.Sprintf("%s (status %d %s)", msg, e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches common.ErrTimeout for timeouts.
func (e *FetchError) Is(target error) bool {
	return target == common.ErrTimeout && e.Kind == KindTimeout
}

func newFetchError(kind FetchErrorKind, url string, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Err: err}
}

func newHTTPStatusError(url string, statusCode int) *FetchError {
	return &FetchError{Kind: KindHTTPError, URL: url, StatusCode: statusCode}
}

// classifyTransportError maps an error from http.Client.Do or a body read to a kind.
func classifyTransportError(url string, err error) *FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return newFetchError(KindTimeout, url, err)
	}
	return newFetchError(KindConnectionFailed, url, err)
}
