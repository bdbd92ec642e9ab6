package delivery

import (
	"errors"
	"fmt"
)

// ErrProviderRejected is the sentinel behind every ProviderRejectedError.
var ErrProviderRejected = errors.New("delivery provider rejected the job")

// ProviderRejectedError reports a non-success courier response or a success
// response without a job identifier. StatusCode is 0 when the HTTP call succeeded.
type ProviderRejectedError struct {
	Provider   string
	StatusCode int
	Reason     string
}

func NewProviderRejectedError(provider string, statusCode int, reason string) *ProviderRejectedError {
	return &ProviderRejectedError{Provider: provider, StatusCode: statusCode, Reason: reason}
}

func (e *ProviderRejectedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned %d: %s", ErrProviderRejected, e.Provider, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrProviderRejected, e.Provider, e.Reason)
}

func (e *ProviderRejectedError) Unwrap() error {
	return ErrProviderRejected
}
