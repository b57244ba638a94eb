package analog

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies the schema of a frame.
type Tag int

// Known tags.
const (
	TagUnknown Tag = iota
	TagCalibration
	TagBattery
	TagTemperature
	TagHumidity
	TagPressure
	TagTime
)

var tagNames = [...]string{
	TagUnknown:     "UNKNOWN",
	TagCalibration: "BMPCAL",
	TagBattery:     "BAT",
	TagTemperature: "TEMP",
	TagHumidity:    "HIH",
	TagPressure:    "BMP",
	TagTime:        "TIME",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		if Tag(tag) != TagUnknown {
			m[name] = Tag(tag)
		}
	}
	return m
}()

// LookupTag maps the wire name (without '$') to a Tag.
func LookupTag(name string) Tag {
	if tag, ok := tagsByName[name]; ok {
		return tag
	}
	return TagUnknown
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "UNKNOWN"
}

// FieldCountError indicates a frame carries the wrong number of values.
type FieldCountError struct {
	Tag  Tag
	Want int
	Got  int
}

// Error implements error.
func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%s: expect %d values, got %d", e.Tag, e.Want, e.Got)
}

// FieldError indicates a value is not a valid number.
type FieldError struct {
	Tag   Tag
	Index int
	Token string
	Err   error
}

// Error implements error.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %d %q: %v", e.Tag, e.Index, e.Token, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// decodeFunc decodes a whole frame (items[0] is the tag token) into s.
// It must not touch s unless every value parsed.
type decodeFunc func(items []string, s *Snapshot) error

var grammar = map[Tag]decodeFunc{
	TagCalibration: decodeCalibration,
	TagBattery:     decodeBattery,
	TagTemperature: decodeTemperature,
	TagHumidity:    decodeHumidity,
	TagPressure:    decodePressure,
	TagTime:        decodeTime,
}

// fieldScanner parses values by index and keeps the first error.
type fieldScanner struct {
	tag   Tag
	items []string
	err   error
}

func scanFields(tag Tag, items []string, count int) (*fieldScanner, error) {
	if got := len(items) - 1; got != count {
		return nil, &FieldCountError{Tag: tag, Want: count, Got: got}
	}
	return &fieldScanner{tag: tag, items: items}, nil
}

func (f *fieldScanner) float(index int) float64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.items[index]), 64)
	if err != nil {
		f.err = &FieldError{Tag: f.tag, Index: index, Token: f.items[index], Err: err}
	}
	return v
}

func (f *fieldScanner) int(index int) int64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(f.items[index]), 10, 64)
	if err != nil {
		f.err = &FieldError{Tag: f.tag, Index: index, Token: f.items[index], Err: err}
	}
	return v
}

// BMPCAL carries calibration constants the board already applies.
func decodeCalibration(items []string, s *Snapshot) error {
	return nil
}

func decodeBattery(items []string, s *Snapshot) error {
	f, err := scanFields(TagBattery, items, 8)
	if err != nil {
		return err
	}
	var b Battery
	for i := range b.Voltages {
		b.Voltages[i] = f.float(1 + i)
	}
	for i := range b.Raw {
		b.Raw[i] = f.int(5 + i)
	}
	if f.err != nil {
		return f.err
	}
	s.Battery = b
	return nil
}

func decodeTemperature(items []string, s *Snapshot) error {
	f, err := scanFields(TagTemperature, items, 8)
	if err != nil {
		return err
	}
	var t Temperature
	for i := range t.Celsius {
		t.Celsius[i] = f.float(1 + i)
	}
	for i := range t.Raw {
		t.Raw[i] = f.int(5 + i)
	}
	if f.err != nil {
		return f.err
	}
	s.Temperature = t
	return nil
}

func decodeHumidity(items []string, s *Snapshot) error {
	f, err := scanFields(TagHumidity, items, 2)
	if err != nil {
		return err
	}
	h := Humidity{
		Relative: f.float(1),
		Raw:      f.int(2),
	}
	if f.err != nil {
		return f.err
	}
	s.Humidity = h
	return nil
}

func decodePressure(items []string, s *Snapshot) error {
	f, err := scanFields(TagPressure, items, 5)
	if err != nil {
		return err
	}
	e := Environment{
		Temperature:    f.float(1),
		Pressure:       f.float(2),
		RawTemperature: f.int(3),
		RawPressure:    f.int(4),
		Dirty:          f.int(5),
	}
	if f.err != nil {
		return f.err
	}
	s.Environment = e
	return nil
}

func decodeTime(items []string, s *Snapshot) error {
	f, err := scanFields(TagTime, items, 1)
	if err != nil {
		return err
	}
	ts := f.int(1)
	if f.err != nil {
		return f.err
	}
	s.Timestamp = ts
	return nil
}
