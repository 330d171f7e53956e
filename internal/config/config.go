// Package config loads the CLI configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bountylist/internal/runtime"
)

// Config is the merged file configuration. Zero fields take defaults.
type Config struct {
	// Ledger is the SQLite ledger path.
	Ledger string `yaml:"ledger"`

	// Keypair is the default wallet keyfile.
	Keypair string `yaml:"keypair"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Rent   runtime.Rent `yaml:"rent"`
	Faucet Faucet       `yaml:"faucet"`
}

// Faucet limits airdrops.
type Faucet struct {
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	MaxAirdrop uint64  `yaml:"max_airdrop"`
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Ledger:   filepath.Join(dir, "ledger.db"),
		Keypair:  filepath.Join(dir, "id.yaml"),
		LogLevel: "info",
		Rent:     runtime.DefaultRent(),
		Faucet: Faucet{
			RPS:        1,
			Burst:      5,
			MaxAirdrop: 100_000_000_000,
		},
	}
}

// Dir returns the default configuration directory.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "bountylist")
	}
	return ".bountylist"
}

// Load reads path over the defaults. A missing file is an error only when
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Rent.LamportsPerByteYear == 0 {
		errs = append(errs, errors.New("rent.lamports_per_byte_year must be positive"))
	}
	if c.Faucet.RPS < 0 || c.Faucet.Burst < 0 {
		errs = append(errs, errors.New("faucet.rps and faucet.burst must not be negative"))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}
