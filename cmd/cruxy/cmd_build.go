package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cruxy/internal/executor"
	"cruxy/internal/gate"
	"cruxy/internal/guild"
	"cruxy/internal/synthesis"
)

var (
	buildTheme string
	buildReset bool
	buildYes   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Synthesize and execute a server build plan",
	Long: `Asks the AI for a complete server layout matching the theme, shows
the plan, and executes it once confirmed. The plan expires if nobody answers
within the confirmation window.

Runs against the in-memory sandbox guild; the executed structure and the
full progress transcript are printed at the end.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildTheme, "theme", "", "theme to build the server around")
	buildCmd.Flags().BoolVar(&buildReset, "reset", false, "wipe existing channels and roles first")
	buildCmd.Flags().BoolVarP(&buildYes, "yes", "y", false, "skip the confirmation prompt")
	_ = buildCmd.MarkFlagRequired("theme")
}

func runBuild(cmd *cobra.Command, args []string) error {
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
	p, err := synth.SynthesizeBuild(ctx, snap, buildTheme)
	if err != nil {
		var serr *synthesis.SynthesisError
		if errors.As(err, &serr) {
			fmt.Println(serr.UserMessage())
			return nil
		}
		return err
	}

	preview := renderBuildPreview(buildTheme, p, buildReset)

	exec := executor.New(graph, executor.Config{
		FuzzyThreshold: cfg.Planner.FuzzyThreshold,
		SettlePause:    cfg.GetSettlePause(),
	}, logger)
	fb := terminalFeedback{}

	g := gate.New(cfg.GetConfirmWindow(), logger)
	pd := g.Propose("cli", p, buildReset, func(runCtx context.Context) error {
		_, err := exec.ExecuteBuild(runCtx, p, fb, buildReset)
		return err
	}, func() {
		fmt.Println("⌛ Confirmation window expired. Build cancelled.")
	})

	if !buildYes {
		fmt.Println(preview)
		result, perr := promptConfirm(preview, cfg.GetConfirmWindow())
		if perr != nil {
			return perr
		}
		switch result {
		case confirmNo:
			if cerr := g.Cancel(pd.ID, "cli"); cerr == nil {
				fmt.Println("❌ Build cancelled by user.")
			}
			return nil
		case confirmTimeout:
			// expiry message comes from the gate callback
			return nil
		}
	}

	if err := g.Confirm(ctx, pd.ID, "cli"); err != nil {
		if errors.Is(err, gate.ErrUnknownPlan) || errors.Is(err, gate.ErrAlreadyResolved) {
			fmt.Println("⌛ The plan is no longer pending.")
			return nil
		}
		return err
	}
	return nil
}

// terminalFeedback streams run progress straight to stdout.
type terminalFeedback struct{}

func (terminalFeedback) Send(_ context.Context, msg string) error {
	fmt.Println(msg)
	return nil
}

func (terminalFeedback) ChannelID() string { return "cli" }
