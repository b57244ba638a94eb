package analog

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type warnRecorder struct {
	warnings []string
}

func (r *warnRecorder) warnf(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func newTestDecoder() (*Decoder, *warnRecorder) {
	rec := &warnRecorder{}
	return &Decoder{Warnf: rec.warnf}, rec
}

// populated returns a decoder with every tag received once.
func populated(t *testing.T) (*Decoder, *warnRecorder) {
	d, rec := newTestDecoder()
	for _, line := range []string{
		"$BAT,12.10,12.20,12.30,12.40,900,901,902,903",
		"$TEMP,122.10,123.10,123.10,127.85,488,492,492,511",
		"$HIH,45.5,2048",
		"$BMP,21.3,101325.0,27898,23843,0",
		"$TIME,123456",
	} {
		require.Equalf(t, OutcomeDecoded, d.Decode(line), "populate %q", line)
	}
	require.Empty(t, rec.warnings)
	return d, rec
}

func TestDecodeFrames(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		expect func(*Snapshot)
	}{
		{
			"battery",
			"$BAT,12.10,12.20,12.30,12.40,900,901,902,903",
			func(s *Snapshot) {
				s.Battery = Battery{
					Voltages: [4]float64{12.10, 12.20, 12.30, 12.40},
					Raw:      [4]int64{900, 901, 902, 903},
				}
			},
		},
		{
			"temperature",
			"$TEMP,122.10,123.10,123.10,127.85,488,492,492,511",
			func(s *Snapshot) {
				s.Temperature = Temperature{
					Celsius: [4]float64{122.10, 123.10, 123.10, 127.85},
					Raw:     [4]int64{488, 492, 492, 511},
				}
			},
		},
		{
			"humidity",
			"$HIH,45.5,2048",
			func(s *Snapshot) {
				s.Humidity = Humidity{Relative: 45.5, Raw: 2048}
			},
		},
		{
			"pressure",
			"$BMP,21.3,101325.0,27898,23843,1",
			func(s *Snapshot) {
				s.Environment = Environment{
					Temperature:    21.3,
					Pressure:       101325.0,
					RawTemperature: 27898,
					RawPressure:    23843,
					Dirty:          1,
				}
			},
		},
		{
			"time",
			"$TIME,1000",
			func(s *Snapshot) { s.Timestamp = 1000 },
		},
		{
			"negative and signed values",
			"$BAT,-0.5,+1.25,1e1,0,-1,+2,3,-4",
			func(s *Snapshot) {
				s.Battery = Battery{
					Voltages: [4]float64{-0.5, 1.25, 10, 0},
					Raw:      [4]int64{-1, 2, 3, -4},
				}
			},
		},
		{
			"blanks around values",
			"$HIH, 45.5 ,2048 ",
			func(s *Snapshot) {
				s.Humidity = Humidity{Relative: 45.5, Raw: 2048}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, rec := newTestDecoder()
			require.Equal(t, OutcomeDecoded, d.Decode(tc.line))
			require.Empty(t, rec.warnings)
			var expect Snapshot
			tc.expect(&expect)
			require.Equal(t, expect, d.Snapshot())
		})
	}
}

func TestDecodeBatteryExact(t *testing.T) {
	values := [][8]string{
		{"0", "0", "0", "0", "0", "0", "0", "0"},
		{"3.3", "5.0", "12.0", "24.0", "1", "2", "3", "4"},
		{"14.765", "0.001", "7", "-3.25", "1023", "0", "-512", "9223372036854775807"},
	}
	for n, v := range values {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			d, _ := newTestDecoder()
			line := "$BAT"
			for _, tok := range v {
				line += "," + tok
			}
			require.Equal(t, OutcomeDecoded, d.Decode(line))
			b := d.Snapshot().Battery
			for i := 0; i < 4; i++ {
				f, err := strconv.ParseFloat(v[i], 64)
				require.NoError(t, err)
				require.Equalf(t, f, b.Voltages[i], "voltage[%d]", i)
				r, err := strconv.ParseInt(v[4+i], 10, 64)
				require.NoError(t, err)
				require.Equalf(t, r, b.Raw[i], "raw[%d]", i)
			}
		})
	}
}

func TestDecodeRejected(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		outcome  Outcome
		warnings int
	}{
		{"banner", "Analog sensors board v1.2", OutcomeIgnored, 0},
		{"empty", "", OutcomeIgnored, 0},
		{"tag without dollar", "BAT,1,2,3,4,5,6,7,8", OutcomeIgnored, 0},
		{"dollar not first", " $TIME,1", OutcomeIgnored, 0},
		{"unknown tag", "$FOO,1,2", OutcomeUnknown, 1},
		{"empty tag", "$", OutcomeUnknown, 1},
		{"lower case tag", "$bat,1,2,3,4,5,6,7,8", OutcomeUnknown, 1},
		{"battery missing fields", "$BAT,12.1,12.2,12.3,12.4,900,901", OutcomeMalformed, 1},
		{"battery extra fields", "$BAT,1,2,3,4,5,6,7,8,9", OutcomeMalformed, 1},
		{"battery bad float", "$BAT,12.1,x,12.3,12.4,900,901,902,903", OutcomeMalformed, 1},
		{"battery bad int", "$BAT,12.1,12.2,12.3,12.4,900,901,902,9.5", OutcomeMalformed, 1},
		{"temperature empty value", "$TEMP,1,2,,4,5,6,7,8", OutcomeMalformed, 1},
		{"humidity no values", "$HIH", OutcomeMalformed, 1},
		{"pressure bad dirty flag", "$BMP,21.3,101325.0,27898,23843,yes", OutcomeMalformed, 1},
		{"time float", "$TIME,1000.5", OutcomeMalformed, 1},
		{"time thousands separator", "$TIME,1 000", OutcomeMalformed, 1},
		{"time overflow", "$TIME,99999999999999999999", OutcomeMalformed, 1},
		{"calibration", "$BMPCAL,408,-72,-14383,32741,32757,23153,6190,4,-32768,-8711,2868", OutcomeSkipped, 0},
		{"calibration garbage", "$BMPCAL,not,numbers,at,all", OutcomeSkipped, 0},
		{"calibration bare", "$BMPCAL", OutcomeSkipped, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, rec := populated(t)
			before := d.Snapshot()
			require.Equal(t, tc.outcome, d.Decode(tc.line))
			require.Len(t, rec.warnings, tc.warnings)
			require.Equal(t, before, d.Snapshot())
		})
	}
}

func TestDecodeZeroValues(t *testing.T) {
	d, _ := newTestDecoder()
	require.Equal(t, OutcomeMalformed, d.Decode("$BAT,1,2,3,4,5,6"))
	require.Equal(t, OutcomeUnknown, d.Decode("$FOO,1,2"))
	require.Equal(t, Snapshot{}, d.Snapshot())
}

func TestDecodeTagsIndependent(t *testing.T) {
	d, rec := newTestDecoder()
	require.Equal(t, OutcomeDecoded, d.Decode("$TEMP,20.0,21.0,22.0,23.0,500,510,520,530"))
	require.Equal(t, OutcomeDecoded, d.Decode("$TIME,1000"))
	require.Empty(t, rec.warnings)

	s := d.Snapshot()
	require.Equal(t, [4]float64{20.0, 21.0, 22.0, 23.0}, s.Temperature.Celsius)
	require.Equal(t, [4]int64{500, 510, 520, 530}, s.Temperature.Raw)
	require.Equal(t, int64(1000), s.Timestamp)
	require.Equal(t, Battery{}, s.Battery)
	require.Equal(t, Environment{}, s.Environment)
	require.Equal(t, Humidity{}, s.Humidity)
}

func TestDecodeOverwrites(t *testing.T) {
	d, _ := populated(t)
	require.Equal(t, OutcomeDecoded, d.Decode("$HIH,50.0,2100"))
	require.Equal(t, Humidity{Relative: 50.0, Raw: 2100}, d.Snapshot().Humidity)
	require.Equal(t, int64(123456), d.Snapshot().Timestamp)
}

func TestDecoderNilWarnf(t *testing.T) {
	d := &Decoder{}
	require.Equal(t, OutcomeUnknown, d.Decode("$FOO"))
}

func TestLookupTag(t *testing.T) {
	for name, tag := range map[string]Tag{
		"BAT":    TagBattery,
		"TEMP":   TagTemperature,
		"HIH":    TagHumidity,
		"BMP":    TagPressure,
		"TIME":   TagTime,
		"BMPCAL": TagCalibration,
		"FOO":    TagUnknown,
		"":       TagUnknown,
	} {
		require.Equalf(t, tag, LookupTag(name), "tag %q", name)
		if tag != TagUnknown {
			require.Equal(t, name, tag.String())
			_, ok := grammar[tag]
			require.Truef(t, ok, "no decoder for %s", name)
		}
	}
	require.Equal(t, TagUnknown, LookupTag("UNKNOWN"))
	require.Equal(t, "UNKNOWN", TagUnknown.String())
	require.Equal(t, "UNKNOWN", Tag(42).String())
	require.Equal(t, "UNKNOWN", Tag(-1).String())
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "decoded", OutcomeDecoded.String())
	require.Equal(t, "invalid", Outcome(42).String())
	require.True(t, OutcomeUnknown.IsWarning())
	require.True(t, OutcomeMalformed.IsWarning())
	require.False(t, OutcomeSkipped.IsWarning())
	require.False(t, OutcomeIgnored.IsWarning())
	require.Len(t, Outcomes, len(outcomeNames))
}

func TestEnvironmentStale(t *testing.T) {
	require.False(t, Environment{}.Stale())
	require.True(t, Environment{Dirty: 1}.Stale())
}
