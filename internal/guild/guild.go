// Package guild defines the boundary to the chat platform's object graph:
// the categories, channels, and roles of one server, plus the mutation
// primitives the planner and executor are allowed to use. The real connector
// lives outside this repository; everything here is expressed against the
// Graph interface so the engine can run against any implementation.
package guild

import "context"

// ChannelKind distinguishes text from voice channels.
type ChannelKind string

const (
	KindText  ChannelKind = "text"
	KindVoice ChannelKind = "voice"
)

// Tri is a tri-state permission value. Inherit means the overwrite does not
// touch the permission at all.
type Tri int

const (
	Inherit Tri = iota
	Allow
	Deny
)

// OverwriteTarget says what kind of entity a permission overwrite applies to.
type OverwriteTarget string

const (
	TargetRole   OverwriteTarget = "role"
	TargetMember OverwriteTarget = "member"
)

// Role is a role as seen through the graph.
type Role struct {
	ID       string
	Name     string
	Managed  bool // platform-reserved (integration) roles, never deletable by us
	Position int  // authority rank, higher outranks lower
}

// Category is a channel category.
type Category struct {
	ID   string
	Name string
}

// Channel is a text or voice channel.
type Channel struct {
	ID         string
	Name       string
	Kind       ChannelKind
	CategoryID string // empty when the channel sits outside any category
}

// PermissionOverwrite grants or denies channel permissions for one target.
type PermissionOverwrite struct {
	TargetID   string
	TargetKind OverwriteTarget
	View       Tri
	Send       Tri
}

// CreateChannelRequest carries everything needed to create one channel.
type CreateChannelRequest struct {
	Name       string
	Kind       ChannelKind
	CategoryID string
	Topic      string
	Overwrites []PermissionOverwrite
}

// Info is the static identity of a guild plus the bot's own standing in it.
type Info struct {
	ID            string
	Name          string
	DefaultRoleID string // the everyone-role, target for public/read-only overwrites
	BotMemberID   string
	BotTopRole    int // authority ceiling for role deletion during reset
}

// Graph is the object-graph collaborator. Reads reflect a consistent view at
// call time; writes may fail with permission or not-found conditions and the
// caller decides how to react.
type Graph interface {
	Info() Info

	Roles(ctx context.Context) ([]Role, error)
	Categories(ctx context.Context) ([]Category, error)
	Channels(ctx context.Context) ([]Channel, error)

	CreateRole(ctx context.Context, name string) (Role, error)
	DeleteRole(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, name string) (Category, error)
	RenameCategory(ctx context.Context, id, newName string) error
	DeleteCategory(ctx context.Context, id string) error

	CreateChannel(ctx context.Context, req CreateChannelRequest) (Channel, error)
	RenameChannel(ctx context.Context, id, newName string) error
	DeleteChannel(ctx context.Context, id string) error

	SendMessage(ctx context.Context, channelID, content string) error
}
