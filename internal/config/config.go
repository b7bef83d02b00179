package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the run configuration consumed by the diagnostic core. It
// is populated from defaults, AISDIAG_* environment variables and any
// cobra flags bound by the shell layer; the core never parses anything
// itself.
type Config struct {
	// PageURL is the live map page the browser session drives.
	PageURL string `mapstructure:"page_url"`
	// TriggerSelector is the CSS selector of the overlay control the
	// session activates after the page is interactive.
	TriggerSelector string `mapstructure:"trigger_selector"`
	// ReadySelector is the element that signals the page reached an
	// interactive state (the map container on OpenSeaMap).
	ReadySelector string `mapstructure:"ready_selector"`

	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	RunDeadline  time.Duration `mapstructure:"run_deadline"`
	SettleWindow time.Duration `mapstructure:"settle_window"`
	Concurrency  int           `mapstructure:"concurrency"`
	Headless     bool          `mapstructure:"headless"`

	// TrackedHosts is the allowlist of data-provider hosts whose
	// requests the browser session records.
	TrackedHosts []string `mapstructure:"tracked_hosts"`

	Addr     string `mapstructure:"addr"` // serve-mode bind address
	LogDir   string `mapstructure:"log_dir"`
	LogLevel string `mapstructure:"log_level"`
}

// Load builds the configuration from defaults and the environment.
// Flags bound into the same viper instance by the CLI win over both.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("AISDIAG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page_url", "https://map.openseamap.org")
	v.SetDefault("trigger_selector", "#checkLayerAis")
	v.SetDefault("ready_selector", "#map")
	v.SetDefault("probe_timeout", 10*time.Second)
	v.SetDefault("run_deadline", 2*time.Minute)
	v.SetDefault("settle_window", 15*time.Second)
	v.SetDefault("concurrency", 4)
	v.SetDefault("headless", true)
	v.SetDefault("tracked_hosts", []string{
		"tiles.marinetraffic.com",
		"www.marinetraffic.com",
		"data.aishub.net",
		"aisstream.io",
		"map.openseamap.org",
	})
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
}

// Validate rejects configurations the run could not honor.
func (c *Config) Validate() error {
	if c.PageURL == "" {
		return fmt.Errorf("page_url is required")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.RunDeadline <= 0 {
		return fmt.Errorf("run_deadline must be positive, got %s", c.RunDeadline)
	}
	if c.SettleWindow <= 0 {
		return fmt.Errorf("settle_window must be positive, got %s", c.SettleWindow)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if len(c.TrackedHosts) == 0 {
		return fmt.Errorf("tracked_hosts must not be empty")
	}
	return nil
}
