package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/analog.go/pkg/comm/mqtt"
	"github.com/robotalks/analog.go/pkg/report"
)

// Config defines the configurations of the shell.
type Config struct {
	// MQTTBrokerURL specifies the MQTT broker the devices publish to.
	MQTTBrokerURL string
	// DeviceID selects the device when commands don't specify one.
	DeviceID string
	// Settle is the time to collect retained messages before evaluating
	// commands in non-interactive mode.
	Settle time.Duration
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883",
	Settle:        time.Second,
}

func init() {
	if val := os.Getenv("ANALOG_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.DurationVar(&defaultConfig.Settle, "settle", defaultConfig.Settle, "Wait for retained messages before evaluating")
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Config  *Config
	Monitor *Monitor
	Queue   *mqtt.Queue

	// current device, empty for automatic selection.
	current string
}

const (
	shellKey       = "$shell"
	noDevicePrompt = "[auto] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DevicesCmd,
		&UseCmd,
		&StatusCmd,
		&BatteryCmd,
		&TemperatureCmd,
		&EnvironmentCmd,
		&LinkCmd,
	}
)

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Monitor: NewMonitor(),
	}
	s.Shell.Set(shellKey, s)
	s.Use(conf.DeviceID)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Use selects the current device.
func (s *Shell) Use(id string) {
	s.current = id
	if id == "" {
		s.Shell.SetPrompt(noDevicePrompt)
		return
	}
	s.Shell.SetPrompt(id + " > ")
}

// Resolve picks the device from args, the current device, or the only
// device known.
func (s *Shell) Resolve(args []string) (Device, error) {
	id := s.current
	if len(args) > 0 {
		id = args[0]
	}
	if id != "" {
		dev, ok := s.Monitor.Device(id)
		if !ok {
			return dev, fmt.Errorf("device %q not seen", id)
		}
		return dev, nil
	}
	devices := s.Monitor.Devices()
	switch len(devices) {
	case 0:
		return Device{}, fmt.Errorf("no device seen")
	case 1:
		return devices[0], nil
	}
	return Device{}, fmt.Errorf("%d devices seen, ID required", len(devices))
}

// Connect connects to the broker and starts monitoring.
func (s *Shell) Connect() error {
	q, err := mqtt.NewQueueFromURL(s.Config.MQTTBrokerURL)
	if err != nil {
		return err
	}
	s.Monitor.Subscribe(q)
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	s.Queue = q
	return nil
}

// Close disconnects from the broker.
func (s *Shell) Close() {
	if s.Queue != nil {
		s.Queue.Close()
		s.Queue = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Connect(); err != nil {
		glog.Exitf("connect %s failed: %v", s.Config.MQTTBrokerURL, err)
	}
	defer s.Close()

	if len(args) > 0 {
		time.Sleep(s.Config.Settle)
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

func (s *Shell) printJSON(c *ishell.Context, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// FormatDevice prints Device into friendly string for display.
func FormatDevice(d Device) string {
	var w strings.Builder
	w.WriteString(d.ID)
	if !d.Online() {
		w.WriteString(" (offline)")
	} else if d.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", d.Meta.Description)
	}
	if d.Link != nil {
		fmt.Fprintf(&w, " [%s %s]", d.Link.Port, d.Link.State)
	}
	return w.String()
}

func formatValues(values []float64, unit string) string {
	items := make([]string, len(values))
	for n, v := range values {
		items[n] = strconv.FormatFloat(v, 'f', -1, 64) + unit
	}
	return strings.Join(items, " ")
}

// deviceCmd builds a command printing part of a device status.
func deviceCmd(name, help string, aliases []string, view func(Device) (interface{}, string)) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			dev, err := s.Resolve(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			v, text := view(dev)
			if s.OutputJSON {
				s.printJSON(c, v)
				return
			}
			c.Print(text)
		},
	}
}

func statusOf(d Device) (interface{}, string) {
	if d.Status == nil {
		return nil, noStatus
	}
	return d.Status, report.FormatStatus(d.Status.Snapshot())
}

var (
	// DevicesCmd lists devices.
	DevicesCmd = ishell.Cmd{
		Name:    "devices",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			devices := s.Monitor.Devices()
			if s.OutputJSON {
				s.printJSON(c, devices)
				return
			}
			if len(devices) == 0 {
				c.Println("No devices found")
				return
			}
			for _, dev := range devices {
				c.Println(FormatDevice(dev))
			}
		},
	}

	// UseCmd selects the current device.
	UseCmd = ishell.Cmd{
		Name:    "use",
		Aliases: []string{"u"},
		Help:    "[ID]",
		Func: func(c *ishell.Context) {
			var id string
			if len(c.Args) > 0 {
				id = c.Args[0]
			}
			ShellFrom(c).Use(id)
		},
	}

	// StatusCmd prints the full status.
	StatusCmd = deviceCmd("status", "[ID]", []string{"s"}, statusOf)

	// BatteryCmd prints battery voltages.
	BatteryCmd = deviceCmd("battery", "[ID]", []string{"bat"}, batteryOf)

	// TemperatureCmd prints vehicle temperatures.
	TemperatureCmd = deviceCmd("temperature", "[ID]", []string{"temp"}, temperatureOf)

	// EnvironmentCmd prints barometer and humidity readings.
	EnvironmentCmd = deviceCmd("environment", "[ID]", []string{"env"}, environmentOf)

	// LinkCmd prints the serial link state.
	LinkCmd = deviceCmd("link", "[ID]", nil, linkOf)
)

const noStatus = "no status received\n"

func batteryOf(d Device) (interface{}, string) {
	if d.Status == nil {
		return nil, noStatus
	}
	s := d.Status.Snapshot()
	return s.Battery, formatValues(s.Battery.Voltages[:], "V") + "\n"
}

func temperatureOf(d Device) (interface{}, string) {
	if d.Status == nil {
		return nil, noStatus
	}
	s := d.Status.Snapshot()
	return s.Temperature, formatValues(s.Temperature.Celsius[:], "C") + "\n"
}

type environmentView struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
	Stale       bool    `json:"stale,omitempty"`
}

func environmentOf(d Device) (interface{}, string) {
	if d.Status == nil {
		return nil, noStatus
	}
	s := d.Status.Snapshot()
	view := environmentView{s.Environment.Temperature, s.Environment.Pressure, s.Humidity.Relative, s.Environment.Stale()}
	text := formatValues([]float64{view.Temperature}, "C") + " " +
		formatValues([]float64{view.Pressure}, "Pa") + " " +
		formatValues([]float64{view.Humidity}, "RH%")
	if view.Stale {
		text += " (stale)"
	}
	return view, text + "\n"
}

func linkOf(d Device) (interface{}, string) {
	if d.Link == nil {
		return nil, "no link status received\n"
	}
	return d.Link, fmt.Sprintf("%s %s\n", d.Link.Port, d.Link.State)
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	defer glog.Flush()
	New(NewConfig()).Run(flag.Args()...)
}
