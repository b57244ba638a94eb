package link

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPort indicates the port name is empty.
	ErrNoPort = errors.New("port not specified")
	// ErrBadBaud indicates an unsupported baud rate.
	ErrBadBaud = errors.New("unsupported baud rate")
	// ErrBadTimeout indicates a read timeout the tty can't express.
	ErrBadTimeout = errors.New("read timeout must be within (0, 25.5s]")
	// ErrLineTooLong indicates too many bytes were received without a line terminator.
	ErrLineTooLong = errors.New("line too long")
	// ErrHangup indicates the device stopped delivering data, usually unplugged.
	ErrHangup = errors.New("device hangup")
)

// ConfigError indicates the serial configuration can never be opened.
// It is the only error Manager.Run returns besides cancellation.
type ConfigError struct {
	Port string
	Err  error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("bad port configuration %q: %v", e.Port, e.Err)
}

// Unwrap returns the cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var confErr *ConfigError
	return errors.As(err, &confErr)
}
