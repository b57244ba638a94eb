package agent

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/analog.go/pkg/env"
	"github.com/robotalks/analog.go/pkg/link"
)

// SerialConfig is the serial line in its textual form.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	Size        int           `yaml:"size"`
	Parity      string        `yaml:"parity"`
	StopBits    string        `yaml:"stop_bits"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Config defines the configurations of the agent.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Backoff time.Duration `yaml:"backoff"`

	// DeviceID names the device in MQTT topics, the machine ID if empty.
	DeviceID    string `yaml:"id"`
	Description string `yaml:"description"`

	// MQTTBrokerURL specifies the MQTT broker to publish to, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`
	// MetricsAddr is the listen address of /metrics, empty to disable.
	MetricsAddr string `yaml:"metrics_addr"`
	PrintStatus bool   `yaml:"print_status"`

	// File is an optional YAML file loaded by Resolve.
	File string `yaml:"-"`
}

var defaultConfig = envConfig()

func envConfig() Config {
	conf := Config{
		Serial: SerialConfig{
			Port:        link.DefaultPort,
			Baud:        link.DefaultBaud,
			Size:        8,
			Parity:      "N",
			StopBits:    "1",
			ReadTimeout: link.DefaultReadTimeout,
		},
		Backoff:     link.DefaultBackoff,
		PrintStatus: true,
	}
	if val := os.Getenv("ANALOG_SERIAL_PORT"); val != "" {
		conf.Serial.Port = val
	}
	if val := os.Getenv("ANALOG_MQTT_URL"); val != "" {
		conf.MQTTBrokerURL = val
	}
	if val := os.Getenv("ANALOG_METRICS_ADDR"); val != "" {
		conf.MetricsAddr = val
	}
	return conf
}

// SetupFlags sets command line flags.
func SetupFlags() {
	bindFlags(flag.CommandLine, &defaultConfig)
	flag.StringVar(&defaultConfig.File, "config", defaultConfig.File, "YAML config file, explicit flags take precedence")
}

func bindFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Serial.Port, "port", c.Serial.Port, "Serial device")
	fs.IntVar(&c.Serial.Baud, "baud", c.Serial.Baud, "Baud rate")
	fs.IntVar(&c.Serial.Size, "data-bits", c.Serial.Size, "Data bits (5-8)")
	fs.StringVar(&c.Serial.Parity, "parity", c.Serial.Parity, "Parity: N, O, E, M or S")
	fs.StringVar(&c.Serial.StopBits, "stop-bits", c.Serial.StopBits, "Stop bits: 1, 1.5 or 2")
	fs.DurationVar(&c.Serial.ReadTimeout, "read-timeout", c.Serial.ReadTimeout, "Read timeout, at most 25.5s")
	fs.DurationVar(&c.Backoff, "backoff", c.Backoff, "Delay between reconnect attempts")
	fs.StringVar(&c.DeviceID, "id", c.DeviceID, "Device ID, machine ID if empty")
	fs.StringVar(&c.Description, "description", c.Description, "Device description")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Metrics listen address")
	fs.BoolVar(&c.PrintStatus, "print-status", c.PrintStatus, "Print status after each line")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Resolve builds the effective config after flags are parsed.
func Resolve() (*Config, error) {
	conf := NewConfig()
	if conf.File == "" {
		conf.resolveDeviceID()
		return conf, conf.Validate()
	}
	visited := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		visited[f.Name] = f.Value.String()
	})
	return LoadFile(conf.File, visited)
}

// LoadFile loads the YAML file over defaults, then applies overrides
// (flag name to value) on top.
func LoadFile(path string, overrides map[string]string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := envConfig()
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	conf.File = path
	conf.applyDefaults()

	fs := flag.NewFlagSet(path, flag.ContinueOnError)
	bindFlags(fs, &conf)
	for name, val := range overrides {
		if fs.Lookup(name) == nil {
			continue
		}
		if err := fs.Set(name, val); err != nil {
			return nil, fmt.Errorf("flag -%s: %w", name, err)
		}
	}
	conf.resolveDeviceID()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// resolveDeviceID is deferred until flags are parsed as the machine ID
// lookup may log.
func (c *Config) resolveDeviceID() {
	if c.DeviceID == "" {
		c.DeviceID = env.MachineID()
	}
}

func (c *Config) applyDefaults() {
	if c.Serial.Size == 0 {
		c.Serial.Size = 8
	}
	if c.Serial.Parity == "" {
		c.Serial.Parity = "N"
	}
	if c.Serial.StopBits == "" {
		c.Serial.StopBits = "1"
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	conf, err := c.LinkConfig()
	if err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	if c.Backoff <= 0 {
		return fmt.Errorf("backoff must be positive: %v", c.Backoff)
	}
	if c.MQTTBrokerURL != "" && (c.DeviceID == "" || env.Sanitize(c.DeviceID) != c.DeviceID) {
		return fmt.Errorf("invalid device id %q", c.DeviceID)
	}
	return nil
}

// LinkConfig converts the serial settings.
func (c *Config) LinkConfig() (link.Config, error) {
	conf := link.Config{
		Port:        c.Serial.Port,
		Baud:        c.Serial.Baud,
		ReadTimeout: c.Serial.ReadTimeout,
	}
	if c.Serial.Size < 0 || c.Serial.Size > 255 {
		return conf, &link.ConfigError{Port: conf.Port, Err: fmt.Errorf("bad data bits %d", c.Serial.Size)}
	}
	conf.Size = byte(c.Serial.Size)
	var err error
	if conf.Parity, err = link.ParseParity(c.Serial.Parity); err != nil {
		return conf, &link.ConfigError{Port: conf.Port, Err: err}
	}
	if conf.StopBits, err = link.ParseStopBits(c.Serial.StopBits); err != nil {
		return conf, &link.ConfigError{Port: conf.Port, Err: err}
	}
	return conf, nil
}
