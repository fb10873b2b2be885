package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
)

const defaultConfigFile = "atsfeed.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "atsfeed",
	Short: "ATS job feed: extract, dedup and deliver job postings",
	Long: "atsfeed pulls job postings from Greenhouse, Lever, Ashby, Workday and plain careers pages,\n" +
		"normalizes and deduplicates them, and delivers them in batches to an ingestion sink.",
	// Default to `run` so that `atsfeed` with no args performs one pass.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: ATSFEED_CONFIG env var or ./atsfeed.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addRunFlags(rootCmd)
}

// resolveConfigPath picks the config file.
// Priority: explicit path arg > ATSFEED_CONFIG env var > "./atsfeed.yaml" when it exists.
// An empty result means environment-only configuration.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("ATSFEED_CONFIG"); env != "" {
		return env
	}
	if _, err := os.Stat(defaultConfigFile); !errors.Is(err, fs.ErrNotExist) {
		return defaultConfigFile
	}
	return ""
}

func loadConfig(path string, opts ...config.Option) (*config.Config, error) {
	return config.Load(resolveConfigPath(path), opts...)
}

// mustLoadConfig loads config or exits with status 1.
func mustLoadConfig(logger *slog.Logger, opts ...config.Option) *config.Config {
	cfg, err := loadConfig(cfgPath, opts...)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
