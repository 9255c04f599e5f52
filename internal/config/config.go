// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

// Package config layers scanqueryd's configuration from defaults, an
// optional YAML file, and command-line flags, in that order, using
// koanf. The teacher repo's cmd/holomush carried a --config flag
// (root.go) and koanf in go.mod without ever wiring either one up;
// this package is the wiring.
package config

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// ErrConfigInvalid is returned by Validate when a field fails validation.
const ErrConfigInvalid = "CONFIG_INVALID"

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	DataDir            string        `koanf:"data_dir"`
	SecondaryDir       string        `koanf:"secondary_dir"`
	ListenAddr         string        `koanf:"listen_addr"`
	MetricsAddr        string        `koanf:"metrics_addr"`
	LogFormat          string        `koanf:"log_format"`
	DefaultMaxCount    int           `koanf:"default_max_count"`
	OpenRetryAttempts  uint64        `koanf:"open_retry_attempts"`
	OpenRetryBaseDelay time.Duration `koanf:"open_retry_base_delay"`
}

// Default values for ServeConfig fields.
const (
	DefaultListenAddr         = ":8420"
	DefaultMetricsAddr        = "127.0.0.1:8421"
	DefaultLogFormat          = "json"
	DefaultMaxCount           = 1000
	DefaultOpenRetryAttempts  = 10
	DefaultOpenRetryBaseDelay = 50 * time.Millisecond
)

// Validate checks that the configuration is usable.
func (cfg *ServeConfig) Validate() error {
	if cfg.DataDir == "" {
		return oops.Code(ErrConfigInvalid).Errorf("data_dir is required")
	}
	if cfg.ListenAddr == "" {
		return oops.Code(ErrConfigInvalid).Errorf("listen_addr is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return oops.Code(ErrConfigInvalid).Errorf("log_format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if cfg.DefaultMaxCount <= 0 {
		return oops.Code(ErrConfigInvalid).Errorf("default_max_count must be positive, got %d", cfg.DefaultMaxCount)
	}
	return nil
}

// Load builds a ServeConfig by layering, lowest precedence first:
// built-in defaults, an optional YAML file at configPath (skipped if
// configPath is empty; a path that cannot be read is an error), then
// flags explicitly set on fs. fs's flags are
// expected to already carry their own defaults matching the constants
// above, so an unset flag never overrides a value from the file layer.
func Load(configPath string, fs *pflag.FlagSet) (*ServeConfig, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"listen_addr":           DefaultListenAddr,
		"metrics_addr":          DefaultMetricsAddr,
		"log_format":            DefaultLogFormat,
		"default_max_count":     DefaultMaxCount,
		"open_retry_attempts":   uint64(DefaultOpenRetryAttempts),
		"open_retry_base_delay": DefaultOpenRetryBaseDelay,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, oops.Code(ErrConfigInvalid).With("operation", "load defaults").Wrap(err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, oops.Code(ErrConfigInvalid).With("operation", "load config file").With("path", configPath).Wrap(err)
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, oops.Code(ErrConfigInvalid).With("operation", "load flags").Wrap(err)
		}
	}

	cfg := &ServeConfig{}
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, oops.Code(ErrConfigInvalid).With("operation", "unmarshal").Wrap(err)
	}

	return cfg, nil
}
