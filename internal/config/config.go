package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Animator  AnimatorConfig  `yaml:"animator"`
	Converter ConverterConfig `yaml:"converter"`
	PWM       PWMConfig       `yaml:"pwm"`
	Output    OutputConfig    `yaml:"output"`
	Levels    LevelsConfig    `yaml:"levels"`
	Preview   PreviewConfig   `yaml:"preview"`
	Log       LogConfig       `yaml:"log"`
}

type AnimatorConfig struct {
	StartHue   int           `yaml:"start_hue"`
	Step       int           `yaml:"step"`
	Interval   time.Duration `yaml:"interval"`
	Saturation int           `yaml:"saturation"`
	Value      int           `yaml:"value"`
}

type ConverterConfig struct {
	// EdgePolicy is "short_circuit" or "fall_through".
	EdgePolicy string `yaml:"edge_policy"`
}

type PWMConfig struct {
	TickHz int `yaml:"tick_hz"`
	// Publish is "atomic" or "fields".
	Publish    string `yaml:"publish"`
	LockMemory bool   `yaml:"lock_memory"`
}

type OutputConfig struct {
	// Backend is "gpio" or "null".
	Backend   string      `yaml:"backend"`
	Chip      string      `yaml:"chip"`
	Lines     LinesConfig `yaml:"lines"`
	ActiveLow bool        `yaml:"active_low"`
}

// LinesConfig names the GPIO line for each channel, e.g. "GPIO17".
type LinesConfig struct {
	R string `yaml:"r"`
	G string `yaml:"g"`
	B string `yaml:"b"`
	W string `yaml:"w"`
}

type LevelsConfig struct {
	// Script is an optional keyframe file; when set it replaces
	// animator.saturation and animator.value.
	Script string `yaml:"script"`
}

type PreviewConfig struct {
	Enable      bool          `yaml:"enable"`
	Dest        string        `yaml:"dest"`
	MinInterval time.Duration `yaml:"min_interval"`
}

type LogConfig struct {
	// StatusInterval controls the periodic status line; 0 disables it.
	StatusInterval time.Duration `yaml:"status_interval"`
}

const maxTickHz = 1_000_000

// Default returns the configuration used for any key a file leaves out.
// The animation defaults to hue step 5 every 5ms at saturation 200,
// value 255.
func Default() Config {
	return Config{
		Animator: AnimatorConfig{
			Step:       5,
			Interval:   5 * time.Millisecond,
			Saturation: 200,
			Value:      255,
		},
		Converter: ConverterConfig{EdgePolicy: "short_circuit"},
		PWM: PWMConfig{
			TickHz:  25600,
			Publish: "atomic",
		},
		Output:  OutputConfig{Backend: "null"},
		Preview: PreviewConfig{MinInterval: 50 * time.Millisecond},
		Log:     LogConfig{StatusInterval: 10 * time.Second},
	}
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

var yamlLinePrefix = regexp.MustCompile(`^line \d+: `)

// Parse decodes YAML over Default() and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			for _, msg := range te.Errors {
				if strings.Contains(msg, "not found in type") {
					return Config{}, fmt.Errorf("config contains unknown fields: %s", yamlLinePrefix.ReplaceAllString(msg, ""))
				}
			}
		}
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	a := cfg.Animator
	if a.StartHue < 0 || a.StartHue >= 1536 {
		return fmt.Errorf("animator.start_hue must be in [0, 1536)")
	}
	if a.Step <= -1536 || a.Step >= 1536 {
		return fmt.Errorf("animator.step must be in (-1536, 1536)")
	}
	if a.Interval <= 0 {
		return fmt.Errorf("animator.interval must be > 0")
	}
	if a.Saturation < 0 || a.Saturation > 255 {
		return fmt.Errorf("animator.saturation must be in [0, 255]")
	}
	if a.Value < 0 || a.Value > 255 {
		return fmt.Errorf("animator.value must be in [0, 255]")
	}

	switch cfg.Converter.EdgePolicy {
	case "short_circuit", "fall_through":
	default:
		return fmt.Errorf("converter.edge_policy must be 'short_circuit' or 'fall_through'")
	}

	if cfg.PWM.TickHz <= 0 || cfg.PWM.TickHz > maxTickHz {
		return fmt.Errorf("pwm.tick_hz must be in (0, %d]", maxTickHz)
	}
	switch cfg.PWM.Publish {
	case "atomic", "fields":
	default:
		return fmt.Errorf("pwm.publish must be 'atomic' or 'fields'")
	}

	switch cfg.Output.Backend {
	case "null":
	case "gpio":
		l := cfg.Output.Lines
		if l.R == "" || l.G == "" || l.B == "" || l.W == "" {
			return fmt.Errorf("output.lines.r, g, b and w are required when output.backend is 'gpio'")
		}
	default:
		return fmt.Errorf("output.backend must be 'gpio' or 'null'")
	}

	if cfg.Preview.Enable {
		if cfg.Preview.Dest == "" {
			return fmt.Errorf("preview.dest is required when preview.enable is true")
		}
		if cfg.Preview.MinInterval < 0 {
			return fmt.Errorf("preview.min_interval must be >= 0")
		}
	}

	if cfg.Log.StatusInterval < 0 {
		return fmt.Errorf("log.status_interval must be >= 0")
	}
	return nil
}

// PWMFrequencyHz is the visible PWM frequency: one period is 256 ticks.
func (cfg Config) PWMFrequencyHz() float64 {
	return float64(cfg.PWM.TickHz) / 256
}
