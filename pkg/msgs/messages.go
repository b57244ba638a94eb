package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/analog.go/pkg/analog"
)

// SensorStatus is the published form of analog.Snapshot.
type SensorStatus struct {
	Timestamp       int64     `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	BatteryVoltages []float64 `protobuf:"fixed64,2,rep,packed,name=battery_voltages,proto3" json:"battery_voltages,omitempty"`
	BatteryRaw      []int64   `protobuf:"varint,3,rep,packed,name=battery_raw,proto3" json:"battery_raw,omitempty"`
	Temperatures    []float64 `protobuf:"fixed64,4,rep,packed,name=temperatures,proto3" json:"temperatures,omitempty"`
	TemperatureRaw  []int64   `protobuf:"varint,5,rep,packed,name=temperature_raw,proto3" json:"temperature_raw,omitempty"`
	EnvTemperature  float64   `protobuf:"fixed64,6,opt,name=env_temperature,proto3" json:"env_temperature,omitempty"`
	Pressure        float64   `protobuf:"fixed64,7,opt,name=pressure,proto3" json:"pressure,omitempty"`
	PressureUt      int64     `protobuf:"varint,8,opt,name=pressure_ut,proto3" json:"pressure_ut,omitempty"`
	PressureUp      int64     `protobuf:"varint,9,opt,name=pressure_up,proto3" json:"pressure_up,omitempty"`
	PressureDirty   int64     `protobuf:"varint,10,opt,name=pressure_dirty,proto3" json:"pressure_dirty,omitempty"`
	Humidity        float64   `protobuf:"fixed64,11,opt,name=humidity,proto3" json:"humidity,omitempty"`
	HumidityRaw     int64     `protobuf:"varint,12,opt,name=humidity_raw,proto3" json:"humidity_raw,omitempty"`
}

// NewSensorStatus converts a snapshot.
func NewSensorStatus(s analog.Snapshot) *SensorStatus {
	return &SensorStatus{
		Timestamp:       s.Timestamp,
		BatteryVoltages: append([]float64(nil), s.Battery.Voltages[:]...),
		BatteryRaw:      append([]int64(nil), s.Battery.Raw[:]...),
		Temperatures:    append([]float64(nil), s.Temperature.Celsius[:]...),
		TemperatureRaw:  append([]int64(nil), s.Temperature.Raw[:]...),
		EnvTemperature:  s.Environment.Temperature,
		Pressure:        s.Environment.Pressure,
		PressureUt:      s.Environment.RawTemperature,
		PressureUp:      s.Environment.RawPressure,
		PressureDirty:   s.Environment.Dirty,
		Humidity:        s.Humidity.Relative,
		HumidityRaw:     s.Humidity.Raw,
	}
}

// Snapshot converts back to analog.Snapshot.
// Missing array elements are left zero, extra ones are dropped.
func (m *SensorStatus) Snapshot() (s analog.Snapshot) {
	copy(s.Battery.Voltages[:], m.BatteryVoltages)
	copy(s.Battery.Raw[:], m.BatteryRaw)
	copy(s.Temperature.Celsius[:], m.Temperatures)
	copy(s.Temperature.Raw[:], m.TemperatureRaw)
	s.Environment = analog.Environment{
		Temperature:    m.EnvTemperature,
		Pressure:       m.Pressure,
		RawTemperature: m.PressureUt,
		RawPressure:    m.PressureUp,
		Dirty:          m.PressureDirty,
	}
	s.Humidity = analog.Humidity{Relative: m.Humidity, Raw: m.HumidityRaw}
	s.Timestamp = m.Timestamp
	return
}

// ProtoMessage implements proto.Message.
func (m *SensorStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SensorStatus) Reset() { *m = SensorStatus{} }

// String implements proto.Message.
func (m *SensorStatus) String() string { return proto.CompactTextString(m) }

// LinkStatus reports the serial link state.
type LinkStatus struct {
	Port  string `protobuf:"bytes,1,opt,name=port,proto3" json:"port,omitempty"`
	State string `protobuf:"bytes,2,opt,name=state,proto3" json:"state,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *LinkStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStatus) Reset() { *m = LinkStatus{} }

// String implements proto.Message.
func (m *LinkStatus) String() string { return proto.CompactTextString(m) }

// DeviceMeta is published (JSON, retained) when the daemon connects.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Port        string            `json:"port,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Encode encodes a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// DecodeSensorStatus decodes a SensorStatus.
func DecodeSensorStatus(data []byte) (*SensorStatus, error) {
	var m SensorStatus
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeLinkStatus decodes a LinkStatus.
func DecodeLinkStatus(data []byte) (*LinkStatus, error) {
	var m LinkStatus
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
