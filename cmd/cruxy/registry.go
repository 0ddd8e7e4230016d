package main

import (
	"context"

	"cruxy/internal/guild"
	"cruxy/internal/server"
)

// sandboxRegistry serves a single in-memory guild. Until a chat-platform
// connector is configured, every command operates against this sandbox so
// the whole plan, confirm, and execute pipeline can be exercised without
// touching a real server.
type sandboxRegistry struct {
	graph *guild.MemoryGraph
}

func newSandboxRegistry() (*sandboxRegistry, error) {
	g := guild.NewMemoryGraph("sandbox", "Cruxy Sandbox")
	if _, err := g.CreateChannel(context.Background(), guild.CreateChannelRequest{
		Name: "general",
		Kind: guild.KindText,
	}); err != nil {
		return nil, err
	}
	return &sandboxRegistry{graph: g}, nil
}

func (r *sandboxRegistry) Guilds() []server.GuildSummary {
	info := r.graph.Info()
	return []server.GuildSummary{{ID: info.ID, Name: info.Name}}
}

func (r *sandboxRegistry) Graph(id string) (guild.Graph, bool) {
	if id != r.graph.Info().ID {
		return nil, false
	}
	return r.graph, true
}
