package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/forge/builder"
	"github.com/tailored-agentic-units/forge/server"
	"github.com/tailored-agentic-units/forge/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP generation service",
		Long: `Start the HTTP service. Environment:

  PORT             listen port (default 8000)
  BUILD_ENDPOINT   build service URL (default http://localhost:3000/build)
  STORE_URL        key-value store base URL; persistence disabled when unset
  SKIP_VALIDATION  bypass the build gate (local development only)
  OPENAI_API_KEY   model API key (also settable in the config file)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBuilderConfig()
			if err != nil {
				return err
			}

			b, err := builder.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize builder: %w", err)
			}

			var opts []server.Option
			if storeURL := getEnv("STORE_URL", ""); storeURL != "" {
				apps := store.NewAppStore(store.NewClient(storeURL))
				opts = append(opts, server.WithAppStore(apps))
				slog.Info("app persistence enabled", "store_url", storeURL)
			}

			srv := server.New(b, opts...)
			addr := fmt.Sprintf(":%d", getEnvInt("PORT", 8000))
			slog.Info("starting service", "addr", addr, "build_endpoint", cfg.BuildEndpoint)
			return srv.Router().Run(addr)
		},
	}
}
