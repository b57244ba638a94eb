package link

import (
	"fmt"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// Config defines the serial line.
type Config struct {
	Port        string
	Baud        int
	Size        byte
	Parity      serial.Parity
	StopBits    serial.StopBits
	ReadTimeout time.Duration
}

// Defaults of the sensor board.
const (
	DefaultPort        = "/dev/ttyACM3"
	DefaultBaud        = 57600
	DefaultReadTimeout = 5 * time.Second
	DefaultBackoff     = 5 * time.Second

	maxReadTimeout = 255 * 100 * time.Millisecond
)

// DefaultConfig returns the 8N1 configuration of the sensor board.
func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		Baud:        DefaultBaud,
		Size:        serial.DefaultSize,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: DefaultReadTimeout,
	}
}

var standardBauds = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
	230400: true, 460800: true, 500000: true, 576000: true, 921600: true,
	1000000: true, 1152000: true, 1500000: true, 2000000: true,
	2500000: true, 3000000: true, 3500000: true, 4000000: true,
}

// Validate checks the configuration without touching the device.
func (c *Config) Validate() error {
	var err error
	switch {
	case c.Port == "":
		err = ErrNoPort
	case !standardBauds[c.Baud]:
		err = fmt.Errorf("%w: %d", ErrBadBaud, c.Baud)
	case c.Size < 5 || c.Size > 8:
		err = serial.ErrBadSize
	case !validParity(c.Parity):
		err = serial.ErrBadParity
	case c.StopBits != serial.Stop1 && c.StopBits != serial.Stop1Half && c.StopBits != serial.Stop2:
		err = serial.ErrBadStopBits
	case c.ReadTimeout <= 0 || c.ReadTimeout > maxReadTimeout:
		err = fmt.Errorf("%w: %v", ErrBadTimeout, c.ReadTimeout)
	}
	if err != nil {
		return &ConfigError{Port: c.Port, Err: err}
	}
	return nil
}

// String formats the line settings, e.g. /dev/ttyACM3@57600/8N1.
func (c Config) String() string {
	return fmt.Sprintf("%s@%d/%d%c%s", c.Port, c.Baud, c.Size, c.Parity, FormatStopBits(c.StopBits))
}

func validParity(p serial.Parity) bool {
	switch p {
	case serial.ParityNone, serial.ParityOdd, serial.ParityEven, serial.ParityMark, serial.ParitySpace:
		return true
	}
	return false
}

// ParseParity parses N, O, E, M or S.
func ParseParity(s string) (serial.Parity, error) {
	if len(s) == 1 {
		if p := serial.Parity(strings.ToUpper(s)[0]); validParity(p) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", serial.ErrBadParity, s)
}

// ParseStopBits parses 1, 1.5 or 2.
func ParseStopBits(s string) (serial.StopBits, error) {
	switch s {
	case "1":
		return serial.Stop1, nil
	case "1.5":
		return serial.Stop1Half, nil
	case "2":
		return serial.Stop2, nil
	}
	return 0, fmt.Errorf("%w: %q", serial.ErrBadStopBits, s)
}

// FormatStopBits is the reverse of ParseStopBits.
func FormatStopBits(b serial.StopBits) string {
	switch b {
	case serial.Stop1:
		return "1"
	case serial.Stop1Half:
		return "1.5"
	case serial.Stop2:
		return "2"
	}
	return fmt.Sprintf("?%d", b)
}
