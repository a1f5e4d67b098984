package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigIsNil          = errors.New("config is nil")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrSessionSecretInvalid = errors.New("session secret must be a string")
	ErrEntryUnknown         = errors.New("unknown middleware entry")
	ErrHandlerIsNil         = errors.New("handler is nil")
)

var (
	ErrActionNotInitialized   = errors.New("action not initialized")
	ErrActionConnectionFailed = errors.New("action connection failed")
	ErrActionTypeUnknown      = errors.New("action type unknown")
	ErrActionIsDisabled       = errors.New("action broker is disabled")
)

var (
	ErrMetricsTypeUnknown = errors.New("metrics type unknown")
	ErrMetricsIsDisabled  = errors.New("metrics manager is disabled")
)

var (
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}
