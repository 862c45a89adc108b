// Package main provides the forge CLI: an HTTP service and one-shot commands
// for generating React apps through a model-driven tool loop.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/forge/builder"
)

var version = "0.1.0"

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "forge",
		Short:   "React app builder driven by a model tool loop",
		Version: version,
		Long: `forge generates and edits client-side React apps. The model mutates an
in-memory file set through create/edit/delete tools; finished file sets are
validated against the build service before being returned.

Use 'forge serve' to run the HTTP service, or 'forge create' / 'forge edit'
for one-shot generation into a local directory.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadBuilderConfig assembles the builder configuration from the optional
// config file plus environment overrides. Environment wins over file values
// so containerized deployments can tune a shared config.
func loadBuilderConfig() (*builder.Config, error) {
	var cfg *builder.Config
	if configFile != "" {
		loaded, err := builder.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := builder.DefaultConfig()
		cfg = &def
	}

	cfg.BuildEndpoint = getEnv("BUILD_ENDPOINT", cfg.BuildEndpoint)
	if getEnvBool("SKIP_VALIDATION", cfg.SkipValidation) {
		cfg.SkipValidation = true
	}
	if attempts := getEnvInt("MAX_ATTEMPTS", cfg.MaxAttempts); attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
