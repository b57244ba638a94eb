package link

import (
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

type chunkReader struct {
	reads []fakeRead
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.reads) == 0 {
		return 0, io.EOF
	}
	rd := r.reads[0]
	r.reads = r.reads[1:]
	return copy(p, rd.data), rd.err
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func readAllLines(t *testing.T, l *LineReader, reads int) (lines []string) {
	for i := 0; i < reads; i++ {
		line, ok, err := l.ReadLine()
		require.NoErrorf(t, err, "read %d", i)
		if ok {
			lines = append(lines, line)
		}
	}
	return
}

func TestLineReader(t *testing.T) {
	testCases := []struct {
		name   string
		reads  []fakeRead
		expect []string
	}{
		{"single line", []fakeRead{{data: "$TIME,1\n"}}, []string{"$TIME,1"}},
		{"crlf", []fakeRead{{data: "$TIME,1\r\n"}}, []string{"$TIME,1"}},
		{"only last cr stripped", []fakeRead{{data: "$TIME,1\r\r\n"}}, []string{"$TIME,1\r"}},
		{"several lines in one read", []fakeRead{{data: "a\nb\r\nc\n"}}, []string{"a", "b", "c"}},
		{"split line", []fakeRead{{data: "$TI"}, {data: "ME,"}, {data: "1\n"}}, []string{"$TIME,1"}},
		{"split across eof", []fakeRead{{data: "$TI"}, {err: io.EOF}, {data: "ME,1\n"}}, []string{"$TIME,1"}},
		{"split across timeout", []fakeRead{{data: "$TI"}, {err: timeoutError{}}, {data: "ME,1\n"}}, []string{"$TIME,1"}},
		{"data with eof", []fakeRead{{data: "$TIME,1\n", err: io.EOF}}, []string{"$TIME,1"}},
		{"empty line", []fakeRead{{data: "\n"}}, []string{""}},
		{"no terminator", []fakeRead{{data: "$TIME,1"}}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLineReader(&chunkReader{reads: tc.reads})
			require.Equal(t, tc.expect, readAllLines(t, l, len(tc.reads)+4))
		})
	}
}

func TestLineReaderError(t *testing.T) {
	l := NewLineReader(&chunkReader{reads: []fakeRead{{data: "$TIME"}, {err: syscall.EIO}}})
	_, ok, err := l.ReadLine()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = l.ReadLine()
	require.Equal(t, syscall.EIO, err)
	require.False(t, ok)
	require.Equal(t, 5, l.Buffered())
	l.Reset()
	require.Zero(t, l.Buffered())
}

func TestLineReaderTooLong(t *testing.T) {
	l := NewLineReader(&chunkReader{reads: []fakeRead{{data: "0123456789"}, {data: "abc\n$TIME,1\n"}}})
	l.MaxLength = 8
	_, ok, err := l.ReadLine()
	require.Equal(t, ErrLineTooLong, err)
	require.False(t, ok)
	require.Zero(t, l.Buffered())
	require.Equal(t, []string{"abc", "$TIME,1"}, readAllLines(t, l, 2))
}

func TestIsIdle(t *testing.T) {
	require.True(t, IsIdle(io.EOF))
	require.True(t, IsIdle(timeoutError{}))
	require.True(t, IsIdle(&os.PathError{Op: "read", Path: "/dev/ttyTEST", Err: os.ErrDeadlineExceeded}))
	require.False(t, IsIdle(syscall.EIO))
	require.False(t, IsIdle(ErrHangup))
}
