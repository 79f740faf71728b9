// Package config holds simulation settings and the file/environment loader
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Simulation is the runtime-adjustable configuration of one simulation
type Simulation struct {
	TimeScale  float64 `toml:"timeScale" yaml:"timeScale" json:"timeScale" validate:"gt=0,lte=20" env:"TIME_SCALE"`
	IsPaused   bool    `toml:"isPaused" yaml:"isPaused" json:"isPaused" env:"PAUSED"`
	SpawnRate  float64 `toml:"spawnRate" yaml:"spawnRate" json:"spawnRate" validate:"gte=0,lte=200" env:"SPAWN_RATE"`
	ShowDebug  bool    `toml:"showDebug" yaml:"showDebug" json:"showDebug" env:"SHOW_DEBUG"`
	StrictFlow bool    `toml:"strictFlow" yaml:"strictFlow" json:"strictFlow" env:"STRICT_FLOW"`
	// Seed 0 selects a time-based seed at simulation construction
	Seed int64 `toml:"seed" yaml:"seed" json:"seed" env:"SEED"`
}

// Default returns the documented defaults
func Default() Simulation {
	return Simulation{
		TimeScale: 1,
		SpawnRate: 10,
	}
}

// Validate checks value ranges
func (s Simulation) Validate() error {
	return validate(s)
}

// Server configures the HTTP/WebSocket API
type Server struct {
	Addr         string   `toml:"addr" yaml:"addr" json:"addr" validate:"omitempty,hostname_port" env:"SERVER_ADDR"`
	AllowOrigins []string `toml:"allowOrigins" yaml:"allowOrigins" json:"allowOrigins" env:"ALLOW_ORIGINS" envSeparator:","`
}

// NATS configures the snapshot publisher; empty URL disables it
type NATS struct {
	URL     string `toml:"url" yaml:"url" json:"url" validate:"omitempty,url" env:"NATS_URL"`
	Subject string `toml:"subject" yaml:"subject" json:"subject" validate:"required_with=URL" env:"NATS_SUBJECT"`
}

// Log configures file logging
type Log struct {
	Debug bool   `toml:"debug" yaml:"debug" json:"debug" env:"LOG_DEBUG"`
	Dir   string `toml:"dir" yaml:"dir" json:"dir" validate:"required" env:"LOG_DIR"`
}

// Layout selects the facility: explicit rows win over generation
type Layout struct {
	Rows   []string `toml:"rows" yaml:"rows" json:"rows"`
	Aisles int      `toml:"aisles" yaml:"aisles" json:"aisles" validate:"gte=1,lte=32" env:"LAYOUT_AISLES"`
	Width  int      `toml:"width" yaml:"width" json:"width" validate:"gte=8,lte=256" env:"LAYOUT_WIDTH"`
	Seed   int64    `toml:"seed" yaml:"seed" json:"seed" env:"LAYOUT_SEED"`
}

// File is the complete on-disk configuration
type File struct {
	Simulation Simulation `toml:"simulation" yaml:"simulation" json:"simulation"`
	Server     Server     `toml:"server" yaml:"server" json:"server"`
	NATS       NATS       `toml:"nats" yaml:"nats" json:"nats"`
	Log        Log        `toml:"log" yaml:"log" json:"log"`
	Layout     Layout     `toml:"layout" yaml:"layout" json:"layout"`
}

// DefaultFile returns a File populated with defaults
func DefaultFile() File {
	return File{
		Simulation: Default(),
		NATS:       NATS{Subject: "parksim"},
		Log:        Log{Dir: "logs"},
		Layout:     Layout{Aisles: 3, Width: 24, Seed: 1},
	}
}

// Validate checks every section
func (f File) Validate() error {
	return validate(f)
}

var validatorInstance = validator.New()

// validate flattens validator field errors into a single message
func validate(v any) error {
	err := validatorInstance.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate config")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Namespace()+" failed "+fe.Tag())
	}
	return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
