package main

import (
	"fmt"
	"net/http"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/turnguard"
	"github.com/hupe1980/turnguard/config"
	"github.com/hupe1980/turnguard/core"
	"github.com/hupe1980/turnguard/gateway"
	"github.com/hupe1980/turnguard/gateway/anthropic"
	"github.com/hupe1980/turnguard/gateway/openai"
	"github.com/hupe1980/turnguard/logging"
	"github.com/hupe1980/turnguard/server"
	"github.com/hupe1980/turnguard/store/sqlite"
)

var (
	serveAddr string
	storePath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}
		if storePath != "" {
			cfg.StorePath = storePath
		}

		level := logging.LogLevelInfo
		if verbose {
			level = logging.LogLevelDebug
		}
		logger := logging.NewLogger(&logging.LoggerConfig{
			Level:  level,
			Format: "text",
			Output: cmd.OutOrStdout(),
		})

		gen, err := buildGenerator(cfg)
		if err != nil {
			return err
		}

		var ctxStore core.ContextStore
		if cfg.StorePath != "" {
			sqlStore, err := sqlite.Open(cfg.StorePath)
			if err != nil {
				return err
			}
			defer sqlStore.Close()
			ctxStore = sqlStore
		}

		tg := turnguard.New(func(o *turnguard.Options) {
			o.Generator = gen
			if ctxStore != nil {
				o.ContextStore = ctxStore
			}
			if len(cfg.Denylist) > 0 {
				o.Denylist = cfg.Denylist
			}
			o.TurnTimeout = cfg.TurnTimeout
			o.MaxHistoryTurns = cfg.MaxHistoryTurns
			o.Logger = logger
		})

		srv := server.New(tg.Orchestrator(), func(o *server.Options) {
			o.Logger = logger
		})

		logger.Info("starting server", "addr", cfg.HTTPAddr, "provider", cfg.Provider)
		return http.ListenAndServe(cfg.HTTPAddr, srv.Routes())
	},
}

func buildGenerator(cfg config.Config) (gateway.Generator, error) {
	switch cfg.Provider {
	case "openai":
		key, err := cfg.APIKey()
		if err != nil {
			return nil, err
		}
		return openai.NewGenerator(func(o *openai.Options) {
			o.APIKey = key
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
		}), nil
	case "anthropic":
		key, err := cfg.APIKey()
		if err != nil {
			return nil, err
		}
		return anthropic.NewGenerator(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = key
		}), nil
	case "mock":
		return gateway.NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&storePath, "store", "", "SQLite store path (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
