// Package agent wires the serial link, the decoder and the reporters.
package agent

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/analog.go/pkg/analog"
	fx "github.com/robotalks/analog.go/pkg/framework"
	"github.com/robotalks/analog.go/pkg/link"
	"github.com/robotalks/analog.go/pkg/metrics"
	"github.com/robotalks/analog.go/pkg/msgs"
	"github.com/robotalks/analog.go/pkg/report"
)

// Agent decodes lines from the link and reports snapshots.
type Agent struct {
	Config    *Config
	Decoder   *analog.Decoder
	Manager   *link.Manager
	Reporters report.Multi
	Metrics   *metrics.Metrics
	Publisher *report.Publisher
}

// New creates an Agent from config.
func (c *Config) New() (*Agent, error) {
	linkConf, err := c.LinkConfig()
	if err != nil {
		return nil, err
	}
	a := &Agent{
		Config:  c,
		Decoder: analog.NewDecoder(),
	}
	a.Manager = link.NewManager(linkConf, a)
	a.Manager.Backoff = c.Backoff

	var notifiers link.Notifiers
	if c.PrintStatus {
		a.Reporters.Add(report.NewConsole())
	}
	if c.MetricsAddr != "" {
		a.Metrics = metrics.New()
		a.Reporters.Add(a.Metrics)
		notifiers = append(notifiers, a.Metrics)
	}
	if c.MQTTBrokerURL != "" {
		c.resolveDeviceID()
		meta := msgs.DeviceMeta{
			Description: c.Description,
			Port:        linkConf.String(),
		}
		if a.Publisher, err = report.NewPublisher(c.MQTTBrokerURL, c.DeviceID, meta); err != nil {
			return nil, fmt.Errorf("create MQTT publisher error: %w", err)
		}
		a.Publisher.Port = linkConf.Port
		a.Reporters.Add(a.Publisher)
		notifiers = append(notifiers, a.Publisher)
	}
	if len(notifiers) > 0 {
		a.Manager.Notifier = notifiers
	}
	return a, nil
}

// MustNew creates the Agent or exits.
func (c *Config) MustNew() *Agent {
	a, err := c.New()
	if err != nil {
		glog.Exitf("%v", err)
	}
	return a
}

// HandleLine implements link.LineHandler.
func (a *Agent) HandleLine(ctx context.Context, line string) {
	outcome := a.Decoder.Decode(line)
	if a.Metrics != nil {
		a.Metrics.LineDecoded(outcome)
	}
	if a.Reporters.Len() == 0 {
		return
	}
	if err := a.Reporters.Report(ctx, a.Decoder.Snapshot()); err != nil {
		glog.Warningf("report error: %v", err)
	}
}

// Runnables lists everything to run.
func (a *Agent) Runnables() []fx.Runnable {
	runnables := []fx.Runnable{fx.NamedRun("link", a.Manager)}
	if a.Metrics != nil {
		runnables = append(runnables, &metrics.Server{Addr: a.Config.MetricsAddr, Metrics: a.Metrics})
	}
	if a.Publisher != nil {
		runnables = append(runnables, a.Publisher)
	}
	return runnables
}

// Run implements Runnable.
// It returns when the link manager stops, which only happens on cancellation
// or a configuration error.
func (a *Agent) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	err := runner.Go(a.Runnables()...).Wait()
	if err != nil {
		return err
	}
	return ctx.Err()
}
