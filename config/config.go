// Package config loads the YAML configuration of the registration
// assistant.
package config

import (
	"log/slog"
	"time"
)

type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

type Config struct {
	LogLevel LogLevel       `yaml:"log_level"`
	Hospital string         `yaml:"hospital"`
	Policy   PolicyConfig   `yaml:"policy"`
	Session  SessionConfig  `yaml:"session"`
	Speech   SpeechConfig   `yaml:"speech"`
	Registry RegistryConfig `yaml:"registry"`
}

// PolicyConfig decides which fields are asked and which block advancement.
type PolicyConfig struct {
	CollectEmail bool `yaml:"collect_email"`
	// SoftRequireAfter > 0 lets phone, email and address pass after that many asks.
	SoftRequireAfter int `yaml:"soft_require_after"`
	// AddressFallbackAfter is how many unparsed address answers are tolerated
	// before the answer is stored as said.
	AddressFallbackAfter int `yaml:"address_fallback_after"`
}

type SessionConfig struct {
	SettleDelay   time.Duration `yaml:"settle_delay"`
	RestartDelay  time.Duration `yaml:"restart_delay"`
	ListenTimeout time.Duration `yaml:"listen_timeout"`
}

type SpeechConfig struct {
	Lang   string  `yaml:"lang"`
	Voice  string  `yaml:"voice"`
	Rate   float64 `yaml:"rate"`
	Pitch  float64 `yaml:"pitch"`
	Volume float64 `yaml:"volume"`
}

const (
	RegistryMemory = "memory"
	RegistrySQLite = "sqlite"
)

type RegistryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Hospital: "City General Hospital",
		Policy: PolicyConfig{
			AddressFallbackAfter: 2,
		},
		Session: SessionConfig{
			SettleDelay:   time.Second,
			RestartDelay:  2 * time.Second,
			ListenTimeout: 20 * time.Second,
		},
		Speech: SpeechConfig{
			Lang:   "en-US",
			Rate:   0.9,
			Pitch:  0.95,
			Volume: 1.0,
		},
		Registry: RegistryConfig{
			Driver: RegistryMemory,
		},
	}
}
