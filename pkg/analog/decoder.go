package analog

import (
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Outcome is the result of decoding one line.
type Outcome int

// Outcomes of Decode.
const (
	// OutcomeIgnored means the line is not a frame.
	OutcomeIgnored Outcome = iota
	// OutcomeDecoded means the snapshot was updated.
	OutcomeDecoded
	// OutcomeSkipped means the tag is known but carries nothing to keep.
	OutcomeSkipped
	// OutcomeUnknown means the tag is not recognized.
	OutcomeUnknown
	// OutcomeMalformed means the values don't match the tag schema.
	OutcomeMalformed
)

var outcomeNames = [...]string{
	OutcomeIgnored:   "ignored",
	OutcomeDecoded:   "decoded",
	OutcomeSkipped:   "skipped",
	OutcomeUnknown:   "unknown",
	OutcomeMalformed: "malformed",
}

// Outcomes lists all outcomes, e.g. for pre-creating metric labels.
var Outcomes = []Outcome{OutcomeIgnored, OutcomeDecoded, OutcomeSkipped, OutcomeUnknown, OutcomeMalformed}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "invalid"
}

// IsWarning indicates a warning was raised for the line.
func (o Outcome) IsWarning() bool {
	return o == OutcomeUnknown || o == OutcomeMalformed
}

// Decoder applies frames to the snapshot it owns.
// Decode is expected to be called from a single loop, while
// Snapshot is safe to call from any goroutine.
type Decoder struct {
	// Warnf receives protocol warnings.
	Warnf func(format string, args ...interface{})

	snapshot Snapshot
	lock     sync.RWMutex
}

// NewDecoder creates a Decoder logging warnings with glog.
func NewDecoder() *Decoder {
	return &Decoder{Warnf: glog.Warningf}
}

// Snapshot returns a copy of the current snapshot.
func (d *Decoder) Snapshot() Snapshot {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.snapshot
}

// Decode parses one line (without line terminator) and updates the snapshot.
// A rejected line never modifies the snapshot.
func (d *Decoder) Decode(line string) Outcome {
	items := strings.Split(line, ",")
	if !strings.HasPrefix(items[0], "$") {
		return OutcomeIgnored
	}
	name := items[0][1:]
	tag := LookupTag(name)
	decode, ok := grammar[tag]
	if !ok {
		d.warnf("message not recognized! bad format? tag %q", name)
		return OutcomeUnknown
	}
	d.lock.Lock()
	next := d.snapshot
	err := decode(items, &next)
	if err == nil {
		d.snapshot = next
	}
	d.lock.Unlock()

	if err != nil {
		d.warnf("bad message: %v", err)
		return OutcomeMalformed
	}
	if tag == TagCalibration {
		return OutcomeSkipped
	}
	return OutcomeDecoded
}

func (d *Decoder) warnf(format string, args ...interface{}) {
	if w := d.Warnf; w != nil {
		w(format, args...)
	}
}
