package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path over the defaults and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults. Unknown keys are
// rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every problem found in cfg, joined.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Hospital == "" {
		errs = append(errs, errors.New("hospital is required"))
	}

	if cfg.Policy.SoftRequireAfter < 0 {
		errs = append(errs, fmt.Errorf("policy.soft_require_after %d must not be negative", cfg.Policy.SoftRequireAfter))
	}
	if cfg.Policy.AddressFallbackAfter < 0 {
		errs = append(errs, fmt.Errorf("policy.address_fallback_after %d must not be negative", cfg.Policy.AddressFallbackAfter))
	}

	for name, d := range map[string]int64{
		"session.settle_delay":   int64(cfg.Session.SettleDelay),
		"session.restart_delay":  int64(cfg.Session.RestartDelay),
		"session.listen_timeout": int64(cfg.Session.ListenTimeout),
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	if cfg.Speech.Lang == "" {
		errs = append(errs, errors.New("speech.lang is required"))
	}
	if cfg.Speech.Rate <= 0 || cfg.Speech.Rate > 10 {
		errs = append(errs, fmt.Errorf("speech.rate %.2f is out of range (0, 10]", cfg.Speech.Rate))
	}
	if cfg.Speech.Pitch <= 0 || cfg.Speech.Pitch > 2 {
		errs = append(errs, fmt.Errorf("speech.pitch %.2f is out of range (0, 2]", cfg.Speech.Pitch))
	}
	if cfg.Speech.Volume < 0 || cfg.Speech.Volume > 1 {
		errs = append(errs, fmt.Errorf("speech.volume %.2f is out of range [0, 1]", cfg.Speech.Volume))
	}

	switch cfg.Registry.Driver {
	case RegistryMemory:
	case RegistrySQLite:
		if cfg.Registry.DSN == "" {
			errs = append(errs, errors.New("registry.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("registry.driver %q is invalid; valid values: memory, sqlite", cfg.Registry.Driver))
	}

	return errors.Join(errs...)
}
