package link

import (
	"bytes"
	"io"
	"os"
)

// DefaultMaxLineLength bounds the bytes buffered without a line terminator.
const DefaultMaxLineLength = 4096

// LineReader splits a byte stream into lines.
// Unlike bufio.Scanner it keeps a partial line across empty reads,
// so a read timeout in the middle of a frame doesn't lose it.
type LineReader struct {
	Reader    io.Reader
	MaxLength int

	buf   []byte
	chunk []byte
}

// NewLineReader creates a LineReader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		Reader:    r,
		MaxLength: DefaultMaxLineLength,
		chunk:     make([]byte, 256),
	}
}

// ReadLine returns the next line without "\n" or "\r\n".
// It issues at most one Read on the underlying reader, ok is false
// if no complete line is available afterwards.
// Empty reads (no data, io.EOF from a tty read timeout, timeout errors)
// are not errors.
func (l *LineReader) ReadLine() (line string, ok bool, err error) {
	if line, ok = l.next(); ok {
		return
	}
	if l.chunk == nil {
		l.chunk = make([]byte, 256)
	}
	n, err := l.Reader.Read(l.chunk)
	l.buf = append(l.buf, l.chunk[:n]...)
	if err != nil && !IsIdle(err) {
		return "", false, err
	}
	if line, ok = l.next(); ok {
		return line, true, nil
	}
	if max := l.MaxLength; max > 0 && len(l.buf) > max {
		l.buf = l.buf[:0]
		return "", false, ErrLineTooLong
	}
	return "", false, nil
}

// Reset drops buffered data.
func (l *LineReader) Reset() {
	l.buf = l.buf[:0]
}

// Buffered returns the number of bytes of the pending partial line.
func (l *LineReader) Buffered() int {
	return len(l.buf)
}

func (l *LineReader) next() (string, bool) {
	pos := bytes.IndexByte(l.buf, '\n')
	if pos < 0 {
		return "", false
	}
	line := l.buf[:pos]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	s := string(line)
	l.buf = append(l.buf[:0], l.buf[pos+1:]...)
	return s, true
}

// IsIdle checks if a read error only means no data arrived in time.
func IsIdle(err error) bool {
	return err == io.EOF || os.IsTimeout(err)
}
