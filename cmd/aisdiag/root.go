package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"aisdiag/internal/config"
	"aisdiag/internal/logging"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "aisdiag",
	Short: "Diagnose why a map's vessel-tracking overlay shows no data",
	Long: "aisdiag probes every plausible failure point between the AIS data " +
		"providers and the rendered browser layer — DNS, the raw HTTP data " +
		"endpoints, and a live browser session — and classifies the evidence " +
		"into a single reproducible verdict.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("page-url", "", "live map page to drive")
	pf.Bool("headless", true, "run the browser session headless")
	pf.Duration("probe-timeout", 0, "per-probe timeout")
	pf.Duration("run-deadline", 0, "global deadline for the whole run")
	pf.Duration("settle-window", 0, "post-trigger observation window")
	pf.Int("concurrency", 0, "network probe worker limit")
	pf.String("log-dir", "", "directory for rotated log files")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	for flag, key := range map[string]string{
		"page-url":      "page_url",
		"headless":      "headless",
		"probe-timeout": "probe_timeout",
		"run-deadline":  "run_deadline",
		"settle-window": "settle_window",
		"concurrency":   "concurrency",
		"log-dir":       "log_dir",
		"log-level":     "log_level",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
}

// setup loads configuration and builds the run logger; a failure here
// is the fatal setup-fault class.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration: %w", err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
