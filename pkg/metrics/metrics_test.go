package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/analog.go/pkg/analog"
	"github.com/robotalks/analog.go/pkg/link"
)

func TestLineOutcomes(t *testing.T) {
	m := New()
	m.LineDecoded(analog.OutcomeDecoded)
	m.LineDecoded(analog.OutcomeDecoded)
	m.LineDecoded(analog.OutcomeMalformed)
	require.Equal(t, 2.0, testutil.ToFloat64(m.lines.WithLabelValues("decoded")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.lines.WithLabelValues("malformed")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.lines.WithLabelValues("unknown")))
	require.Equal(t, len(analog.Outcomes), testutil.CollectAndCount(m.lines))
}

func TestLinkState(t *testing.T) {
	m := New()
	require.Equal(t, 1.0, testutil.ToFloat64(m.linkState.WithLabelValues("disconnected")))

	ctx := context.Background()
	for _, state := range []link.State{
		link.StateConnecting, link.StateConnected, link.StateDisconnected,
		link.StateConnecting, link.StateConnected,
	} {
		m.StateChanged(ctx, state)
	}
	require.Equal(t, 1.0, testutil.ToFloat64(m.linkState.WithLabelValues("connected")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.linkState.WithLabelValues("disconnected")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.linkState.WithLabelValues("connecting")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.reconnects))
}

func TestReport(t *testing.T) {
	m := New()
	var s analog.Snapshot
	s.Battery.Voltages = [4]float64{12.5, 12.4, 12.6, 12.3}
	s.Temperature.Celsius[2] = 30.5
	s.Environment.Pressure = 101325
	s.Humidity.Relative = 45.2
	s.Timestamp = 99
	require.NoError(t, m.Report(context.Background(), s))
	require.Equal(t, 12.6, testutil.ToFloat64(m.battery.WithLabelValues("2")))
	require.Equal(t, 30.5, testutil.ToFloat64(m.temperature.WithLabelValues("2")))
	require.Equal(t, 101325.0, testutil.ToFloat64(m.pressure))
	require.Equal(t, 45.2, testutil.ToFloat64(m.humidity))
	require.Equal(t, 99.0, testutil.ToFloat64(m.timestamp))
}

func TestHandler(t *testing.T) {
	m := New()
	m.LineDecoded(analog.OutcomeDecoded)
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `analog_lines_total{outcome="decoded"} 1`)
	require.Contains(t, string(body), `analog_link_state{state="disconnected"} 1`)
}

func TestServerStops(t *testing.T) {
	s := &Server{Addr: "127.0.0.1:0", Metrics: New()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
