package link

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// LineHandler is called for every non-empty line received.
type LineHandler interface {
	HandleLine(context.Context, string)
}

// HandleLineFunc is func type of LineHandler.
type HandleLineFunc func(context.Context, string)

// HandleLine implements LineHandler.
func (f HandleLineFunc) HandleLine(ctx context.Context, line string) {
	f(ctx, line)
}

// Manager owns the serial link.
type Manager struct {
	Config   Config
	Opener   Opener
	Handler  LineHandler
	Notifier StateNotifier
	// Backoff is the delay before the next open attempt.
	Backoff time.Duration

	state State
	lock  sync.RWMutex
}

// NewManager creates a Manager on a tty device.
func NewManager(conf Config, handler LineHandler) *Manager {
	return &Manager{
		Config:  conf,
		Opener:  SerialOpener{},
		Handler: handler,
		Backoff: DefaultBackoff,
	}
}

// State gets the state.
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

// Run implements Runnable.
// It only returns on cancellation (ctx.Err()) or a *ConfigError, and the
// port is always closed on return.
func (m *Manager) Run(ctx context.Context) error {
	defer m.setState(ctx, StateClosed)
	if err := m.Config.Validate(); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.setState(ctx, StateConnecting)
		port, err := m.Opener.Open(m.Config)
		if err != nil {
			m.setState(ctx, StateDisconnected)
			if IsConfigError(err) {
				return err
			}
			glog.Warningf("device %s not found, waiting for device ...: %v", m.Config.Port, err)
			if err = m.wait(ctx); err != nil {
				return err
			}
			continue
		}
		glog.Infof("device %s connected", m.Config)
		m.setState(ctx, StateConnected)

		err = m.serve(ctx, port)
		if closeErr := port.Close(); closeErr != nil {
			glog.Warningf("close %s error: %v", m.Config.Port, closeErr)
		}
		m.setState(ctx, StateDisconnected)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		glog.Errorf("device %s connection lost: %v", m.Config.Port, err)
		if err = m.wait(ctx); err != nil {
			return err
		}
	}
}

// serve reads lines until the link fails or ctx is done.
func (m *Manager) serve(ctx context.Context, port io.Reader) error {
	lines := NewLineReader(port)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line, ok, err := lines.ReadLine()
		if err == ErrLineTooLong {
			glog.Warningf("no line terminator within %d bytes, data dropped", lines.MaxLength)
			continue
		}
		if err != nil {
			return err
		}
		if !ok || line == "" {
			continue
		}
		if glog.V(2) {
			glog.Infof("RX %q", line)
		}
		if h := m.Handler; h != nil {
			h.HandleLine(ctx, line)
		}
	}
}

func (m *Manager) wait(ctx context.Context) error {
	backoff := m.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

func (m *Manager) setState(ctx context.Context, state State) {
	var notifier StateNotifier
	m.lock.Lock()
	if m.state != state {
		m.state = state
		notifier = m.Notifier
	}
	m.lock.Unlock()
	if notifier != nil {
		notifier.StateChanged(ctx, state)
	}
}
