package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/stagehand/effect"
	"github.com/robmorgan/stagehand/fixture"
	"gopkg.in/yaml.v3"
)

// Output types.
const (
	OutputNone   = "none"
	OutputSerial = "serial"
	OutputOLA    = "ola"
)

// Config represents options that configure the global behavior of the console
type Config struct {
	// ShowFile is the JSON file the cue list is loaded from and saved to
	ShowFile string `yaml:"show"`

	// FPS is how many control loop iterations run per second
	FPS int `yaml:"fps"`

	LogLevel string `yaml:"log_level"`

	// LogFile receives log output while the operator console owns the terminal
	LogFile string `yaml:"log_file"`

	Output OutputConfig `yaml:"output"`
	Fade   FadeConfig   `yaml:"fade"`

	// Patch maps light names onto dimmer channels
	Patch fixture.Patch `yaml:"patch"`
}

// OutputConfig selects where frames are sent.
type OutputConfig struct {
	Type string `yaml:"type"`

	// serial
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// ola
	OLAAddress string `yaml:"ola_address"`
	Universe   int    `yaml:"universe"`
}

// FadeConfig controls timed crossfades.
type FadeConfig struct {
	Curve    string        `yaml:"curve"`
	Duration time.Duration `yaml:"duration"`
}

// NewConfig creates a Config with reasonable defaults for real usage
func NewConfig() Config {
	return Config{
		ShowFile: "show.json",
		FPS:      40,
		LogLevel: "info",
		LogFile:  "stagehand.log",
		Output: OutputConfig{
			Type:       OutputNone,
			Port:       "COM26",
			Baud:       9600,
			OLAAddress: "localhost:9010",
			Universe:   1,
		},
		Fade: FadeConfig{
			Curve:    "linear",
			Duration: 3 * time.Second,
		},
		Patch: fixture.DefaultPatch(),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithStackTrace(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithStackTrace(fmt.Errorf("parse config %s: %w", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail once the show is running.
func (c Config) Validate() error {
	if c.ShowFile == "" {
		return fmt.Errorf("show file must be set")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	switch c.Output.Type {
	case OutputNone:
	case OutputSerial:
		if c.Output.Port == "" {
			return fmt.Errorf("serial output needs a port")
		}
		if c.Output.Baud <= 0 {
			return fmt.Errorf("serial baud must be positive, got %d", c.Output.Baud)
		}
	case OutputOLA:
		if c.Output.OLAAddress == "" {
			return fmt.Errorf("ola output needs an address")
		}
	default:
		return fmt.Errorf("unknown output type %q", c.Output.Type)
	}
	if _, err := effect.Curve(c.Fade.Curve); err != nil {
		return err
	}
	if c.Fade.Duration < 0 {
		return fmt.Errorf("fade duration must not be negative")
	}
	return c.Patch.Validate()
}

// TickInterval is the time between control loop iterations.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
