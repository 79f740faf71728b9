package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PARKSIM_"

// Load reads path (may be empty), applies .env and PARKSIM_* overrides, and validates
func Load(path string) (File, error) {
	f := DefaultFile()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return f, errors.Wrap(err, "read config")
		}
		if err := Decode(&f, filepath.Ext(path), data); err != nil {
			return f, errors.Wrapf(err, "decode %s", path)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return f, errors.Wrap(err, "load .env")
	}

	if err := ApplyEnv(&f); err != nil {
		return f, err
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// Decode unmarshals data over f by file extension
func Decode(f *File, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.Unmarshal(data, f)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, f)
	default:
		return errors.Errorf("unsupported config extension %q", ext)
	}
}

// ApplyEnv overrides fields from PARKSIM_* environment variables named by the env tags
// Unset variables keep the current value
func ApplyEnv(f *File) error {
	if err := env.ParseWithOptions(f, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Wrap(err, "environment overrides")
	}
	return nil
}
