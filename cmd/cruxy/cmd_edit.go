package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cruxy/internal/executor"
	"cruxy/internal/guild"
	"cruxy/internal/synthesis"
)

var editRequest string

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Synthesize and execute a server edit plan",
	Long: `Asks the AI for targeted changes to the current server structure
and applies them. Edit plans run immediately; targets that no longer exist
are skipped quietly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := newSandboxRegistry()
		if err != nil {
			return err
		}
		graph := reg.graph

		client := synthesis.NewGeminiClientWithConfig(synthesis.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		})
		synth := synthesis.NewSynthesizer(client, logger)

		snap, err := guild.TakeSnapshot(ctx, graph)
		if err != nil {
			return err
		}
		fmt.Println("🤔 Asking the AI for a plan...")
		p, err := synth.SynthesizeEdit(ctx, snap, editRequest)
		if err != nil {
			var serr *synthesis.SynthesisError
			if errors.As(err, &serr) {
				fmt.Println(serr.UserMessage())
				return nil
			}
			return err
		}

		exec := executor.New(graph, executor.Config{
			FuzzyThreshold: cfg.Planner.FuzzyThreshold,
			SettlePause:    cfg.GetSettlePause(),
		}, logger)
		_, err = exec.ExecuteEdit(ctx, p, terminalFeedback{})
		return err
	},
}

func init() {
	editCmd.Flags().StringVar(&editRequest, "request", "", "the change to make, in plain language")
	_ = editCmd.MarkFlagRequired("request")
}
