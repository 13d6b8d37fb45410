// Package config loads the ucode CLI configuration from TOML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/ucode-layout/errors"
)

// Integer constructor shapes the reference host can expose. A broken shape
// rejects every call, which exercises capability probing.
const (
	ShapeWidth  = "width"
	ShapeBroken = "broken"
)

// Config is the CLI configuration. Flags override file values.
type Config struct {
	Image    string `toml:"image"`
	Wasm     string `toml:"wasm"`
	Base     string `toml:"base"`
	LogLevel string `toml:"log_level"`
	Session  string `toml:"session"`
	Host     Host   `toml:"host"`
}

// Host selects the capabilities of the reference host.
type Host struct {
	IntShapes   []string `toml:"int_shapes"`
	EnumSupport bool     `toml:"enum_support"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Base:     "0x0",
		LogLevel: "info",
		Host: Host{
			EnumSupport: true,
			IntShapes:   []string{ShapeWidth},
		},
	}
}

// Load reads path over the defaults. A missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config "+path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.ParseFailed(errors.PhaseConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.InvalidInput(errors.PhaseConfig, "unknown keys: "+strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Image != "" && c.Wasm != "" {
		return errors.Conflict(errors.PhaseConfig, "image and wasm are mutually exclusive")
	}
	if _, err := c.BaseAddr(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, s := range c.Host.IntShapes {
		switch s {
		case ShapeWidth, ShapeBroken:
		default:
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown int shape %q", s))
		}
	}
	return nil
}

// BaseAddr parses Base. Hex needs a 0x prefix.
func (c Config) BaseAddr() (uint64, error) {
	return ParseAddr(c.Base)
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, errors.ParseFailed(errors.PhaseConfig, "log_level", err)
	}
	return lvl, nil
}

// ParseAddr parses an address in Go integer literal syntax. Empty is zero.
func ParseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.ParseFailed(errors.PhaseConfig, "address "+s, err)
	}
	return v, nil
}
