// Package plan defines the validated plan structures the executor consumes
// and the validator that is the only way to construct them. Raw JSON from the
// synthesizer never crosses this boundary untyped.
package plan

import "cruxy/internal/guild"

// TaskKind identifies a build-plan task variant.
type TaskKind string

const (
	TaskCreateCategory TaskKind = "create_category"
	TaskCreateChannel  TaskKind = "create_channel"
)

// PermissionKind identifies a permission spec variant.
type PermissionKind string

const (
	PermissionPublic     PermissionKind = "public"
	PermissionReadOnly   PermissionKind = "read-only"
	PermissionRestricted PermissionKind = "restricted"
)

// PermissionSpec says who can see and use a channel. Allow is only populated
// for the restricted variant and every entry is guaranteed by the validator
// to appear in the plan's role list.
type PermissionSpec struct {
	Kind  PermissionKind
	Allow []string
}

// Task is one build-plan operation. Kind selects the variant; the remaining
// fields are populated per variant.
type Task struct {
	Kind        TaskKind
	Name        string
	Category    string // create_channel: name declared by an earlier create_category
	ChannelKind guild.ChannelKind
	Permissions PermissionSpec
	Topic       string
	Message     string // initial message posted after creation
}

// BuildPlan is a validated server-build plan. Tasks is never empty.
type BuildPlan struct {
	Roles []string
	Tasks []Task
}

// ActionKind identifies an edit-plan action variant.
type ActionKind string

const (
	ActionRenameChannel  ActionKind = "rename_channel"
	ActionDeleteChannel  ActionKind = "delete_channel"
	ActionCreateChannel  ActionKind = "create_channel"
	ActionRenameCategory ActionKind = "rename_category"
	ActionDeleteCategory ActionKind = "delete_category"
)

// Action is one edit-plan operation. Unlike build tasks, category references
// must already exist in the snapshot the plan was synthesized against.
type Action struct {
	Kind        ActionKind
	Name        string
	CurrentName string
	NewName     string
	Category    string
	ChannelKind guild.ChannelKind
}

// EditPlan is a validated server-edit plan. An empty action list is legal
// here: an edit request can legitimately resolve to nothing.
type EditPlan struct {
	Actions []Action
}
