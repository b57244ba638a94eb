// Package metrics exports link and sensor state as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/analog.go/pkg/analog"
	fx "github.com/robotalks/analog.go/pkg/framework"
	"github.com/robotalks/analog.go/pkg/link"
)

// Metrics collects the agent metrics in its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	lines       *prometheus.CounterVec
	linkState   *prometheus.GaugeVec
	reconnects  prometheus.Counter
	battery     *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	envTemp     prometheus.Gauge
	pressure    prometheus.Gauge
	humidity    prometheus.Gauge
	timestamp   prometheus.Gauge

	connectedOnce bool
}

// New creates Metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analog_lines_total",
			Help: "Lines received from the device by decode outcome.",
		}, []string{"outcome"}),
		linkState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analog_link_state",
			Help: "Current link state, 1 for the active state.",
		}, []string{"state"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analog_link_reconnects_total",
			Help: "Connections established after the first one.",
		}),
		battery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analog_battery_volts",
			Help: "Battery voltages.",
		}, []string{"index"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analog_temperature_celsius",
			Help: "Vehicle temperatures.",
		}, []string{"index"}),
		envTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analog_env_temperature_celsius",
			Help: "Barometer temperature.",
		}),
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analog_pressure_pascals",
			Help: "Barometric pressure.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analog_humidity_percent",
			Help: "Relative humidity.",
		}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analog_device_timestamp",
			Help: "Last timestamp reported by the device.",
		}),
	}
	m.Registry.MustRegister(m.lines, m.linkState, m.reconnects, m.battery,
		m.temperature, m.envTemp, m.pressure, m.humidity, m.timestamp)
	for _, o := range analog.Outcomes {
		m.lines.WithLabelValues(o.String())
	}
	m.setState(link.StateDisconnected)
	return m
}

// LineDecoded counts a line by outcome.
func (m *Metrics) LineDecoded(o analog.Outcome) {
	m.lines.WithLabelValues(o.String()).Inc()
}

// Lines returns the line counter by outcome.
func (m *Metrics) Lines() *prometheus.CounterVec {
	return m.lines
}

// StateChanged implements link.StateNotifier.
// It is called from the manager goroutine only.
func (m *Metrics) StateChanged(ctx context.Context, state link.State) {
	if state == link.StateConnected {
		if m.connectedOnce {
			m.reconnects.Inc()
		}
		m.connectedOnce = true
	}
	m.setState(state)
}

func (m *Metrics) setState(state link.State) {
	for _, s := range link.States {
		var v float64
		if s == state {
			v = 1
		}
		m.linkState.WithLabelValues(s.String()).Set(v)
	}
}

// Report implements report.Reporter.
func (m *Metrics) Report(ctx context.Context, s analog.Snapshot) error {
	for n := range s.Battery.Voltages {
		index := strconv.Itoa(n)
		m.battery.WithLabelValues(index).Set(s.Battery.Voltages[n])
		m.temperature.WithLabelValues(index).Set(s.Temperature.Celsius[n])
	}
	m.envTemp.Set(s.Environment.Temperature)
	m.pressure.Set(s.Environment.Pressure)
	m.humidity.Set(s.Humidity.Relative)
	m.timestamp.Set(float64(s.Timestamp))
	return nil
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Server serves metrics on Addr.
type Server struct {
	Addr    string
	Metrics *Metrics
}

// Name implements Named.
func (s *Server) Name() string {
	return "metrics"
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Metrics.Handler())
	srv := &http.Server{Handler: mux}
	glog.Infof("metrics served on %s", ln.Addr())
	err = fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(ln)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
