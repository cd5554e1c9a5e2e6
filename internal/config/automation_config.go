package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// AutomationConfig tunes the trigger pipeline. Read from a TOML file
// so operators can adjust sweep cadence without touching the
// environment.
type AutomationConfig struct {
	SweepInterval   duration `toml:"sweep_interval"`
	DispatchWorkers int      `toml:"dispatch_workers"`
	QueueSize       int      `toml:"queue_size"`
	DispatchTimeout duration `toml:"dispatch_timeout"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func defaultAutomationConfig() AutomationConfig {
	return AutomationConfig{
		SweepInterval:   duration{time.Hour},
		DispatchWorkers: 4,
		QueueSize:       256,
		DispatchTimeout: duration{15 * time.Second},
	}
}

// LoadAutomationConfig reads the automation tuning file. A missing
// file yields the defaults.
func LoadAutomationConfig(path string) AutomationConfig {
	cfg := defaultAutomationConfig()
	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("automation config not found, using defaults")
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse automation config, using defaults")
		return defaultAutomationConfig()
	}
	if cfg.SweepInterval.Duration <= 0 {
		cfg.SweepInterval = duration{time.Hour}
	}
	if cfg.DispatchWorkers <= 0 {
		cfg.DispatchWorkers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.DispatchTimeout.Duration <= 0 {
		cfg.DispatchTimeout = duration{15 * time.Second}
	}
	return cfg
}

func (c AutomationConfig) SweepEvery() time.Duration       { return c.SweepInterval.Duration }
func (c AutomationConfig) DispatchDeadline() time.Duration { return c.DispatchTimeout.Duration }
