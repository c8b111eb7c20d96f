package main

import (
	"fmt"

	"github.com/tbxark/voiceform/agent"
	"github.com/tbxark/voiceform/config"
	"github.com/tbxark/voiceform/extract"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/session"
	"github.com/tbxark/voiceform/speech"
)

func openRegistry(cfg *config.Config) (registry.Registry, error) {
	opts := []registry.Option{registry.WithHospital(cfg.Hospital)}
	switch cfg.Registry.Driver {
	case config.RegistrySQLite:
		return registry.NewSQLiteRegistry(append(opts, registry.WithDSN(cfg.Registry.DSN))...)
	case config.RegistryMemory:
		return registry.NewMemoryRegistry(opts...), nil
	}
	return nil, fmt.Errorf("unknown registry driver %q", cfg.Registry.Driver)
}

func newFlow(cfg *config.Config, submitter agent.Submitter) (*agent.FormFlow, error) {
	spec := agent.NewRegistrationSpec(agent.Policy{
		CollectEmail:     cfg.Policy.CollectEmail,
		SoftRequireAfter: cfg.Policy.SoftRequireAfter,
	})
	return agent.NewLocalFormFlow(
		spec,
		cfg.Hospital,
		[]extract.Option{extract.WithAddressFallbackAfter(cfg.Policy.AddressFallbackAfter)},
		agent.WithSubmitter(submitter),
	)
}

func sessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()
	sc.SettleDelay = cfg.Session.SettleDelay
	sc.RestartDelay = cfg.Session.RestartDelay
	sc.ListenTimeout = cfg.Session.ListenTimeout
	sc.Recognition.Lang = cfg.Speech.Lang
	return sc
}

func speakerOptions(cfg *config.Config) []speech.SpeakerOption {
	opts := []speech.SpeakerOption{speech.WithTuning(cfg.Speech.Rate, cfg.Speech.Pitch, cfg.Speech.Volume)}
	if cfg.Speech.Voice != "" {
		opts = append(opts, speech.WithVoice(speech.Voice{Name: cfg.Speech.Voice, Lang: cfg.Speech.Lang}))
	}
	return opts
}
