package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gcode-inspect/pkg/errors"
	"gcode-inspect/pkg/gcode"
	"gcode-inspect/pkg/log"
)

// Analysis holds the detection thresholds.
type Analysis struct {
	RiseThreshold  float64 `yaml:"rise_threshold"`
	GroupTolerance float64 `yaml:"group_tolerance"`
	UntooledKey    string  `yaml:"untooled_key"`
}

// Log selects logger level and output format.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Config is the whole settings file. Every key is optional.
type Config struct {
	Analysis Analysis `yaml:"analysis"`
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Analysis: Analysis{
			RiseThreshold:  gcode.DefaultRiseThreshold,
			GroupTolerance: gcode.DefaultGroupTolerance,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Server: Server{
			Addr:         ":8085",
			MaxBodyBytes: 64 << 20,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigRead, "unable to read config").SetPath(path)
	}
	if err := Parse(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigParse, "invalid config").SetPath(path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigValidation, "invalid config").SetPath(path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values for keys the document omits.
// Unknown keys are rejected so typos surface.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

var validLevels = []string{"debug", "info", "warn", "warning", "error"}
var validFormats = []string{"text", "json"}

// Validate checks ranges and choices.
func (c Config) Validate() error {
	if c.Analysis.RiseThreshold <= 0 {
		return ErrOutOfRange("analysis", "rise_threshold", c.Analysis.RiseThreshold, "must be above 0")
	}
	if c.Analysis.GroupTolerance <= 0 {
		return ErrOutOfRange("analysis", "group_tolerance", c.Analysis.GroupTolerance, "must be above 0")
	}
	if !contains(validLevels, strings.ToLower(c.Log.Level)) {
		return ErrInvalidChoice("log", "level", c.Log.Level, validLevels)
	}
	if !contains(validFormats, strings.ToLower(c.Log.Format)) {
		return ErrInvalidChoice("log", "format", c.Log.Format, validFormats)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return ErrOutOfRange("server", "max_body_bytes", float64(c.Server.MaxBodyBytes), "must be above 0")
	}
	if c.Server.Addr == "" {
		return ErrInvalidValue("server", "addr", c.Server.Addr, "a listen address such as :8085")
	}
	return nil
}

// AnalysisOptions converts the analysis section to engine options.
func (c Config) AnalysisOptions() []gcode.Option {
	return []gcode.Option{
		gcode.WithRiseThreshold(c.Analysis.RiseThreshold),
		gcode.WithGroupTolerance(c.Analysis.GroupTolerance),
		gcode.WithUntooledKey(c.Analysis.UntooledKey),
	}
}

// ApplyLog configures l from the log section.
func (c Config) ApplyLog(l *log.Logger) {
	l.SetLevel(log.ParseLevel(c.Log.Level))
	if f, ok := log.ParseFormat(c.Log.Format); ok {
		l.SetFormat(f)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// String renders the config as YAML, for `--show-config` style output.
func (c Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(b)
}
