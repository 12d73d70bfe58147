package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobscout-engine/internal/config"
)

var (
	cfgPath string
	debug   bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "jobscout",
	Short:         "Discover job listings and enrich them from their detail pages",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobscout %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var, else built-in defaults)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolveConfigPath applies the priority: --config > JOBSCOUT_CONFIG > none.
func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return os.Getenv("JOBSCOUT_CONFIG")
}

func setupLogger(dbg bool) (*zap.Logger, error) {
	if dbg {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig loads, normalizes and validates the config. Warnings are
// logged; errors fail the command.
func loadConfig(logger *zap.Logger) (config.Config, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		logger.Warn("config warning", zap.String("warning", w))
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			logger.Error("config error", zap.String("error", e))
		}
		return cfg, fmt.Errorf("config %q has %d error(s)", path, len(vr.Errors))
	}
	logger.Info("config loaded",
		zap.String("path", path),
		zap.String("site", cfg.Site.BaseURL),
		zap.String("backend", cfg.Backend.Kind),
		zap.Int("max_candidates", cfg.Discovery.MaxCandidates),
	)
	return cfg, nil
}
