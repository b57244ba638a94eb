package analog

// Battery is the last decoded BAT message.
type Battery struct {
	Voltages [4]float64
	Raw      [4]int64
}

// Temperature is the last decoded TEMP message.
type Temperature struct {
	Celsius [4]float64
	Raw     [4]int64
}

// Environment is the last decoded BMP message.
type Environment struct {
	Temperature    float64
	Pressure       float64
	RawTemperature int64 // UT
	RawPressure    int64 // UP
	Dirty          int64
}

// Stale indicates the barometer reported the reading as not refreshed.
func (e Environment) Stale() bool {
	return e.Dirty != 0
}

// Humidity is the last decoded HIH message.
type Humidity struct {
	Relative float64
	Raw      int64
}

// Snapshot is the current state of all sensors.
// Fields of tags never received keep zero values.
type Snapshot struct {
	Battery     Battery
	Temperature Temperature
	Environment Environment
	Humidity    Humidity
	Timestamp   int64
}
