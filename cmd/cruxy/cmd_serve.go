package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cruxy/internal/executor"
	"cruxy/internal/server"
	"cruxy/internal/store"
	"cruxy/internal/synthesis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web-dashboard API",
	Long: `Starts the HTTP API the web dashboard talks to: guild listing,
automod settings, and the build/edit endpoints. Stops cleanly on SIGINT or
SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		reg, err := newSandboxRegistry()
		if err != nil {
			return err
		}
		client := synthesis.NewGeminiClientWithConfig(synthesis.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		})
		planner := synthesis.NewSynthesizer(client, logger)

		execCfg := executor.Config{
			FuzzyThreshold: cfg.Planner.FuzzyThreshold,
			SettlePause:    cfg.GetSettlePause(),
		}
		srv := server.New(reg, st, planner, execCfg, logger)
		logger.Info("starting dashboard API", zap.String("addr", cfg.Server.Addr))
		return srv.Run(ctx, cfg.Server.Addr)
	},
}
