// Package common provides shared errors and logging setup.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a classifier source whose model failed to load or infer.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidInput marks input that is not a decodable image.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExhaustedPipeline marks a cascade in which every source failed, fallback included.
	ErrExhaustedPipeline = errors.New("classification pipeline exhausted")
	// ErrLedgerWrite marks a failed history persistence write.
	ErrLedgerWrite = errors.New("ledger write failed")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfig marks an unusable configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user, with
// remediation in UserMessage.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the remediation text of the first UserError in err's chain,
// or err.Error() when there is none.
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return err.Error()
}
