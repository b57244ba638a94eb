package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/robotalks/analog.go/pkg/analog"
)

// Console prints the status block.
type Console struct {
	Writer io.Writer

	lock sync.Mutex
}

// NewConsole creates a Console writing to stdout.
func NewConsole() *Console {
	return &Console{Writer: os.Stdout}
}

// Report implements Reporter.
func (c *Console) Report(ctx context.Context, s analog.Snapshot) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	_, err := io.WriteString(c.Writer, FormatStatus(s))
	return err
}

// FormatStatus renders the status block followed by an empty line.
func FormatStatus(s analog.Snapshot) string {
	b, t := s.Battery.Voltages, s.Temperature.Celsius
	return fmt.Sprintf("BATTERY VOLTAGES: %sV %sV %sV %sV\n"+
		"VEHICLE TEMPERATURES: %sC %sC %sC %sC\n"+
		"VEHICLE ENVIRONMENT: %sC %sPa %sRH%%\n\n",
		num(b[0]), num(b[1]), num(b[2]), num(b[3]),
		num(t[0]), num(t[1]), num(t[2]), num(t[3]),
		num(s.Environment.Temperature), num(s.Environment.Pressure), num(s.Humidity.Relative))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
