package link

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// Opener opens the serial port.
type Opener interface {
	Open(Config) (io.ReadCloser, error)
}

// OpenFunc is func type of Opener.
type OpenFunc func(Config) (io.ReadCloser, error)

// Open implements Opener.
func (f OpenFunc) Open(conf Config) (io.ReadCloser, error) {
	return f(conf)
}

// SerialOpener opens tty devices.
type SerialOpener struct{}

// Open implements Opener.
func (SerialOpener) Open(conf Config) (io.ReadCloser, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        conf.Port,
		Baud:        conf.Baud,
		Size:        conf.Size,
		Parity:      conf.Parity,
		StopBits:    conf.StopBits,
		ReadTimeout: conf.ReadTimeout,
	})
	if err != nil {
		switch err {
		case serial.ErrBadSize, serial.ErrBadParity, serial.ErrBadStopBits:
			return nil, &ConfigError{Port: conf.Port, Err: err}
		}
		return nil, err
	}
	return newHangupDetector(port, conf.ReadTimeout), nil
}

// hangupLimit is the number of consecutive early empty reads
// taken as a hangup.
const hangupLimit = 3

// hangupDetector tells a read timeout from a hangup.
// With a read timeout the tty returns 0 bytes (io.EOF) when the timeout
// expires, a hung up tty returns 0 bytes immediately.
type hangupDetector struct {
	io.ReadCloser
	timeout time.Duration
	now     func() time.Time
	early   int
}

func newHangupDetector(rc io.ReadCloser, timeout time.Duration) *hangupDetector {
	return &hangupDetector{ReadCloser: rc, timeout: timeout, now: time.Now}
}

// Read implements io.Reader.
func (d *hangupDetector) Read(p []byte) (int, error) {
	start := d.now()
	n, err := d.ReadCloser.Read(p)
	if n > 0 || (err != nil && !IsIdle(err)) {
		d.early = 0
		return n, err
	}
	if d.now().Sub(start) < d.timeout/2 {
		if d.early++; d.early >= hangupLimit {
			return 0, ErrHangup
		}
	} else {
		d.early = 0
	}
	return n, err
}
