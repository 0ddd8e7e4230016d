package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"cruxy/internal/guild"
)

var errTestDenied = errors.New("permission denied")

// countingGraph wraps a MemoryGraph, counts mutation calls, and can be told
// to fail specific operations by target name.
type countingGraph struct {
	*guild.MemoryGraph

	mu sync.Mutex

	roleCreates     int
	categoryCreates int
	channelCreates  int
	channelDeletes  int
	roleDeletes     int

	deletedChannelIDs []string

	failCreateChannel map[string]error
	failDeleteChannel map[string]error
	failCreateRole    map[string]error
}

func newCountingGraph() *countingGraph {
	return &countingGraph{
		MemoryGraph:       guild.NewMemoryGraph("guild-1", "Test Guild"),
		failCreateChannel: make(map[string]error),
		failDeleteChannel: make(map[string]error),
		failCreateRole:    make(map[string]error),
	}
}

func (g *countingGraph) CreateRole(ctx context.Context, name string) (guild.Role, error) {
	g.mu.Lock()
	g.roleCreates++
	err := g.failCreateRole[name]
	g.mu.Unlock()
	if err != nil {
		return guild.Role{}, err
	}
	return g.MemoryGraph.CreateRole(ctx, name)
}

func (g *countingGraph) CreateCategory(ctx context.Context, name string) (guild.Category, error) {
	g.mu.Lock()
	g.categoryCreates++
	g.mu.Unlock()
	return g.MemoryGraph.CreateCategory(ctx, name)
}

func (g *countingGraph) CreateChannel(ctx context.Context, req guild.CreateChannelRequest) (guild.Channel, error) {
	g.mu.Lock()
	g.channelCreates++
	err := g.failCreateChannel[req.Name]
	g.mu.Unlock()
	if err != nil {
		return guild.Channel{}, err
	}
	return g.MemoryGraph.CreateChannel(ctx, req)
}

func (g *countingGraph) DeleteChannel(ctx context.Context, id string) error {
	g.mu.Lock()
	g.channelDeletes++
	g.deletedChannelIDs = append(g.deletedChannelIDs, id)
	var err error
	for name, e := range g.failDeleteChannel {
		if ch, ok := g.channelByID(ctx, id); ok && ch.Name == name {
			err = e
		}
	}
	g.mu.Unlock()
	if err != nil {
		return err
	}
	return g.MemoryGraph.DeleteChannel(ctx, id)
}

func (g *countingGraph) DeleteRole(ctx context.Context, id string) error {
	g.mu.Lock()
	g.roleDeletes++
	g.mu.Unlock()
	return g.MemoryGraph.DeleteRole(ctx, id)
}

func (g *countingGraph) channelByID(ctx context.Context, id string) (guild.Channel, bool) {
	channels, _ := g.MemoryGraph.Channels(ctx)
	for _, ch := range channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return guild.Channel{}, false
}

// newTestExecutor builds an executor with the settle pause stubbed out.
func newTestExecutor(g guild.Graph) *Executor {
	e := New(g, DefaultConfig(), nil)
	e.sleep = func(time.Duration) {}
	return e
}
