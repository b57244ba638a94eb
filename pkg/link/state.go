package link

import "context"

// State is the state of the link.
type State int

// Link states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateClosed is terminal, reached when Run returns.
	StateClosed
)

var stateNames = [...]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateClosed:       "closed",
}

// States lists all states.
var States = []State{StateDisconnected, StateConnecting, StateConnected, StateClosed}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// StateNotifier is called when the link state changed.
type StateNotifier interface {
	StateChanged(context.Context, State)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, State)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state State) {
	f(ctx, state)
}

// Notifiers fans out state changes.
type Notifiers []StateNotifier

// StateChanged implements StateNotifier.
func (n Notifiers) StateChanged(ctx context.Context, state State) {
	for _, notifier := range n {
		notifier.StateChanged(ctx, state)
	}
}
