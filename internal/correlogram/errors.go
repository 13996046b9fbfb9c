package correlogram

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes correlogram errors.
type ErrorCode string

const (
	// ErrCodeInvalidConfig indicates malformed window/bin sizing or sampling rate.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrCodeUnsortedTrain indicates a spike train that is not non-decreasing.
	ErrCodeUnsortedTrain ErrorCode = "UNSORTED_TRAIN"
)

// ConfigError is returned before any computation when the inputs cannot
// produce a well-defined histogram. Values are never silently coerced.
type ConfigError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidConfig reports whether err is (or wraps) an invalid sizing error.
func IsInvalidConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeInvalidConfig
}

// IsUnsortedTrain reports whether err is (or wraps) an unsorted train error.
func IsUnsortedTrain(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnsortedTrain
}

func invalidConfig(format string, args ...any) *ConfigError {
	return &ConfigError{Code: ErrCodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// UnitError identifies which unit pair of a batch failed.
type UnitError struct {
	Unit1 int
	Unit2 int
	Err   error
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	if e.Unit1 == e.Unit2 {
		return fmt.Sprintf("unit %d: %v", e.Unit1, e.Err)
	}
	return fmt.Sprintf("units %d/%d: %v", e.Unit1, e.Unit2, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
