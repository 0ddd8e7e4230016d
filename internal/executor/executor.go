// Package executor applies validated plans against the live object graph.
// Operations run strictly in plan order, one at a time; a single operation's
// failure never aborts the run. Partial progress is the accepted failure
// mode, there is no rollback.
package executor

import (
	"time"

	"go.uber.org/zap"

	"cruxy/internal/guild"
)

// Config tunes one executor.
type Config struct {
	// FuzzyThreshold is the 0-100 similarity score at or above which a
	// channel name counts as a duplicate of an existing one.
	FuzzyThreshold int
	// SettlePause is how long to wait after a reset before creation starts,
	// so the remote side can settle.
	SettlePause time.Duration
}

// DefaultConfig returns the thresholds the product shipped with.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold: 90,
		SettlePause:    2 * time.Second,
	}
}

// Executor runs build and edit plans against one guild.
type Executor struct {
	graph  guild.Graph
	cfg    Config
	logger *zap.Logger

	// sleep is swapped out by tests so the settle pause costs nothing.
	sleep func(time.Duration)
}

// New creates an executor for a guild graph.
func New(graph guild.Graph, cfg Config, logger *zap.Logger) *Executor {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = DefaultConfig().FuzzyThreshold
	}
	if cfg.SettlePause <= 0 {
		cfg.SettlePause = DefaultConfig().SettlePause
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		graph:  graph,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
}
