package weather

import (
	"errors"
	"net/url"
)

// DefaultFailureMessage is shown when a fault carries no description.
const DefaultFailureMessage = "Failed to fetch weather data"

// ErrNotFound is returned by providers for any non-success HTTP status.
// The provider's error payload is deliberately not parsed.
var ErrNotFound = errors.New("City not found")

// TransportError covers network failures, malformed payloads and anything
// else that goes wrong on the request/parse path.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FailureMessage converts a provider error into the message shown to the user.
func FailureMessage(err error) string {
	if err == nil {
		return DefaultFailureMessage
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound.Error()
	}

	// url.Error text embeds the request URL, which carries the API key.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}
