package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cruxy/internal/guild"
)

// reset wipes the existing structure before a rebuild. Channels go first so
// the window of a half-torn-down structure is short, then roles. The channel
// carrying the run's feedback is excluded by identity, never by name. Roles
// that are platform-managed or ranked at or above the bot's own top role are
// skipped without comment; those are routine boundary conditions, not
// failures. Each deletion failure is recorded and the wipe continues.
func (e *Executor) reset(ctx context.Context, fb guild.Feedback, rep *Report, log *zap.Logger) {
	info := e.graph.Info()

	channels, err := e.graph.Channels(ctx)
	if err != nil {
		rep.failed(fmt.Sprintf("Could not list channels for reset: %v", err))
	}
	for _, ch := range channels {
		if ch.ID == fb.ChannelID() {
			continue
		}
		if err := e.graph.DeleteChannel(ctx, ch.ID); err != nil {
			rep.failed(fmt.Sprintf("Failed to delete channel `%s`: %v", ch.Name, err))
			log.Warn("reset channel deletion failed", zap.String("channel", ch.Name), zap.Error(err))
		}
	}

	categories, err := e.graph.Categories(ctx)
	if err != nil {
		rep.failed(fmt.Sprintf("Could not list categories for reset: %v", err))
	}
	for _, c := range categories {
		if err := e.graph.DeleteCategory(ctx, c.ID); err != nil {
			rep.failed(fmt.Sprintf("Failed to delete category `%s`: %v", c.Name, err))
			log.Warn("reset category deletion failed", zap.String("category", c.Name), zap.Error(err))
		}
	}

	roles, err := e.graph.Roles(ctx)
	if err != nil {
		rep.failed(fmt.Sprintf("Could not list roles for reset: %v", err))
	}
	for _, r := range roles {
		if r.ID == info.DefaultRoleID || r.Managed || r.Position >= info.BotTopRole {
			continue
		}
		if err := e.graph.DeleteRole(ctx, r.ID); err != nil {
			rep.failed(fmt.Sprintf("Failed to delete role `%s`: %v", r.Name, err))
			log.Warn("reset role deletion failed", zap.String("role", r.Name), zap.Error(err))
		}
	}

	// let the remote side settle before creation begins
	e.sleep(e.cfg.SettlePause)
}
