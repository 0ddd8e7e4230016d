package guild

import (
	"context"
	"fmt"
	"sync"
)

// MemoryGraph is an in-memory Graph implementation. It backs the CLI's
// dry-run mode and the test suites; a production deployment swaps in the
// chat-platform connector instead.
type MemoryGraph struct {
	mu   sync.Mutex
	info Info
	seq  int

	roles      []Role
	categories []Category
	channels   []Channel
	overwrites map[string][]PermissionOverwrite // channel ID -> overwrites
	messages   map[string][]string              // channel ID -> sent messages
}

// NewMemoryGraph creates an empty guild with a default role and a bot member.
func NewMemoryGraph(id, name string) *MemoryGraph {
	g := &MemoryGraph{
		info: Info{
			ID:            id,
			Name:          name,
			DefaultRoleID: "role-everyone",
			BotMemberID:   "member-bot",
			BotTopRole:    100,
		},
		overwrites: make(map[string][]PermissionOverwrite),
		messages:   make(map[string][]string),
	}
	g.roles = append(g.roles, Role{ID: g.info.DefaultRoleID, Name: "@everyone", Position: 0})
	return g
}

func (g *MemoryGraph) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s-%d", prefix, g.seq)
}

func (g *MemoryGraph) Info() Info { return g.info }

func (g *MemoryGraph) Roles(_ context.Context) ([]Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Role, len(g.roles))
	copy(out, g.roles)
	return out, nil
}

func (g *MemoryGraph) Categories(_ context.Context) ([]Category, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Category, len(g.categories))
	copy(out, g.categories)
	return out, nil
}

func (g *MemoryGraph) Channels(_ context.Context) ([]Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Channel, len(g.channels))
	copy(out, g.channels)
	return out, nil
}

func (g *MemoryGraph) CreateRole(_ context.Context, name string) (Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := Role{ID: g.nextID("role"), Name: name, Position: 1}
	g.roles = append(g.roles, r)
	return r, nil
}

func (g *MemoryGraph) DeleteRole(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, r := range g.roles {
		if r.ID == id {
			g.roles = append(g.roles[:i], g.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("role %s: not found", id)
}

func (g *MemoryGraph) CreateCategory(_ context.Context, name string) (Category, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := Category{ID: g.nextID("category"), Name: name}
	g.categories = append(g.categories, c)
	return c, nil
}

func (g *MemoryGraph) RenameCategory(_ context.Context, id, newName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.categories {
		if g.categories[i].ID == id {
			g.categories[i].Name = newName
			return nil
		}
	}
	return fmt.Errorf("category %s: not found", id)
}

func (g *MemoryGraph) DeleteCategory(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.categories {
		if c.ID == id {
			g.categories = append(g.categories[:i], g.categories[i+1:]...)
			// orphan the channels that lived under it
			for j := range g.channels {
				if g.channels[j].CategoryID == id {
					g.channels[j].CategoryID = ""
				}
			}
			return nil
		}
	}
	return fmt.Errorf("category %s: not found", id)
}

func (g *MemoryGraph) CreateChannel(_ context.Context, req CreateChannelRequest) (Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kind := req.Kind
	if kind == "" {
		kind = KindText
	}
	ch := Channel{ID: g.nextID("channel"), Name: req.Name, Kind: kind, CategoryID: req.CategoryID}
	g.channels = append(g.channels, ch)
	if len(req.Overwrites) > 0 {
		g.overwrites[ch.ID] = append([]PermissionOverwrite(nil), req.Overwrites...)
	}
	return ch, nil
}

func (g *MemoryGraph) RenameChannel(_ context.Context, id, newName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.channels {
		if g.channels[i].ID == id {
			g.channels[i].Name = newName
			return nil
		}
	}
	return fmt.Errorf("channel %s: not found", id)
}

func (g *MemoryGraph) DeleteChannel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, ch := range g.channels {
		if ch.ID == id {
			g.channels = append(g.channels[:i], g.channels[i+1:]...)
			delete(g.overwrites, id)
			return nil
		}
	}
	return fmt.Errorf("channel %s: not found", id)
}

func (g *MemoryGraph) SendMessage(_ context.Context, channelID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages[channelID] = append(g.messages[channelID], content)
	return nil
}

// AddRole seeds a role with explicit attributes. Test and demo setup helper.
func (g *MemoryGraph) AddRole(name string, managed bool, position int) Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := Role{ID: g.nextID("role"), Name: name, Managed: managed, Position: position}
	g.roles = append(g.roles, r)
	return r
}

// Overwrites returns the permission overwrites applied to a channel.
func (g *MemoryGraph) Overwrites(channelID string) []PermissionOverwrite {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]PermissionOverwrite(nil), g.overwrites[channelID]...)
}

// Messages returns everything sent to a channel.
func (g *MemoryGraph) Messages(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.messages[channelID]...)
}
