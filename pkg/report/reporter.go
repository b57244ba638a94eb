// Package report delivers decoded snapshots to consumers.
package report

import (
	"context"

	"github.com/robotalks/analog.go/pkg/analog"
	fx "github.com/robotalks/analog.go/pkg/framework"
)

// Reporter receives a copy of the snapshot after each processed line.
type Reporter interface {
	Report(context.Context, analog.Snapshot) error
}

// ReportFunc is func type of Reporter.
type ReportFunc func(context.Context, analog.Snapshot) error

// Report implements Reporter.
func (f ReportFunc) Report(ctx context.Context, s analog.Snapshot) error {
	return f(ctx, s)
}

// Multi reports to multiple Reporters.
type Multi struct {
	Reporters []Reporter
}

// Add adds more reporters.
func (m *Multi) Add(reporters ...Reporter) {
	m.Reporters = append(m.Reporters, reporters...)
}

// Len returns the number of reporters.
func (m *Multi) Len() int {
	return len(m.Reporters)
}

// Report implements Reporter.
// All reporters are called even if some of them failed.
func (m *Multi) Report(ctx context.Context, s analog.Snapshot) error {
	var errs fx.AggregatedError
	for _, r := range m.Reporters {
		errs.Add(r.Report(ctx, s))
	}
	return errs.Aggregate()
}
