package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/analog.go/pkg/analog"
)

func TestSensorStatus(t *testing.T) {
	snap := analog.Snapshot{
		Battery: analog.Battery{
			Voltages: [4]float64{12.1, 12.2, 12.3, 12.4},
			Raw:      [4]int64{900, 901, 902, 903},
		},
		Temperature: analog.Temperature{
			Celsius: [4]float64{20, 21, 22, -23.5},
			Raw:     [4]int64{500, 510, 520, -1},
		},
		Environment: analog.Environment{
			Temperature:    21.3,
			Pressure:       101325,
			RawTemperature: 27898,
			RawPressure:    23843,
			Dirty:          1,
		},
		Humidity:  analog.Humidity{Relative: 45.5, Raw: 2048},
		Timestamp: 1000,
	}

	data, err := Encode(NewSensorStatus(snap))
	require.NoError(t, err)
	decoded, err := DecodeSensorStatus(data)
	require.NoError(t, err)
	require.Equal(t, snap, decoded.Snapshot())
	require.NotEmpty(t, decoded.String())
}

func TestSensorStatusShortArrays(t *testing.T) {
	m := &SensorStatus{BatteryVoltages: []float64{1}, TemperatureRaw: []int64{1, 2, 3, 4, 5}}
	s := m.Snapshot()
	require.Equal(t, [4]float64{1, 0, 0, 0}, s.Battery.Voltages)
	require.Equal(t, [4]int64{1, 2, 3, 4}, s.Temperature.Raw)
}

func TestLinkStatus(t *testing.T) {
	data, err := Encode(&LinkStatus{Port: "/dev/ttyACM3", State: "connected"})
	require.NoError(t, err)
	decoded, err := DecodeLinkStatus(data)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM3", decoded.Port)
	require.Equal(t, "connected", decoded.State)

	_, err = DecodeLinkStatus([]byte{0xff})
	require.Error(t, err)
}
