package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cruxy/internal/guild"
	"cruxy/internal/plan"
)

// ExecuteEdit applies a validated edit plan. Targets are resolved by exact
// name against the live graph at execution time, not the synthesis snapshot;
// an absent target is a silent no-op. The consolidated summary is sent to
// the feedback sink and returned.
func (e *Executor) ExecuteEdit(ctx context.Context, p *plan.EditPlan, fb guild.Feedback) (*Report, error) {
	runID := uuid.NewString()[:8]
	log := e.logger.With(zap.String("run", runID), zap.String("guild", e.graph.Info().ID))
	log.Info("starting edit run", zap.Int("actions", len(p.Actions)))

	rep := &Report{}
	for i, action := range p.Actions {
		switch action.Kind {
		case plan.ActionRenameChannel:
			e.renameChannel(ctx, action, rep)
		case plan.ActionDeleteChannel:
			e.deleteChannel(ctx, action, rep)
		case plan.ActionCreateChannel:
			e.editCreateChannel(ctx, i, action, rep, log)
		case plan.ActionRenameCategory:
			e.renameCategory(ctx, action, rep)
		case plan.ActionDeleteCategory:
			e.deleteCategory(ctx, action, rep)
		}
	}

	if err := fb.Send(ctx, rep.Summary()); err != nil {
		log.Warn("could not deliver edit summary", zap.Error(err))
	}
	log.Info("edit run finished",
		zap.Int("actions", len(rep.Actions)),
		zap.Int("notices", len(rep.Notices)))
	return rep, nil
}

func (e *Executor) findChannel(ctx context.Context, name string) (guild.Channel, bool, error) {
	channels, err := e.graph.Channels(ctx)
	if err != nil {
		return guild.Channel{}, false, err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch, true, nil
		}
	}
	return guild.Channel{}, false, nil
}

func (e *Executor) findCategory(ctx context.Context, name string) (guild.Category, bool, error) {
	categories, err := e.graph.Categories(ctx)
	if err != nil {
		return guild.Category{}, false, err
	}
	for _, c := range categories {
		if c.Name == name {
			return c, true, nil
		}
	}
	return guild.Category{}, false, nil
}

func (e *Executor) renameChannel(ctx context.Context, action plan.Action, rep *Report) {
	ch, found, err := e.findChannel(ctx, action.CurrentName)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to look up channel `%s`: %v", action.CurrentName, err))
		return
	}
	if !found {
		rep.noop(fmt.Sprintf("channel %q not found", action.CurrentName))
		return
	}
	if err := e.graph.RenameChannel(ctx, ch.ID, action.NewName); err != nil {
		rep.failed(fmt.Sprintf("Failed to rename channel `%s`: %v", action.CurrentName, err))
		return
	}
	rep.success(fmt.Sprintf("Renamed channel `%s` to `%s`.", action.CurrentName, action.NewName))
}

func (e *Executor) deleteChannel(ctx context.Context, action plan.Action, rep *Report) {
	ch, found, err := e.findChannel(ctx, action.Name)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to look up channel `%s`: %v", action.Name, err))
		return
	}
	if !found {
		rep.noop(fmt.Sprintf("channel %q not found", action.Name))
		return
	}
	if err := e.graph.DeleteChannel(ctx, ch.ID); err != nil {
		rep.failed(fmt.Sprintf("Failed to delete channel `%s`: %v", action.Name, err))
		return
	}
	rep.success(fmt.Sprintf("Deleted channel `%s`.", action.Name))
}

func (e *Executor) editCreateChannel(ctx context.Context, index int, action plan.Action, rep *Report, log *zap.Logger) {
	live, err := e.graph.Channels(ctx)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to list channels: %v", err))
		return
	}
	names := make([]string, len(live))
	for i, ch := range live {
		names[i] = ch.Name
	}
	if match, found := closestMatch(action.Name, names, e.cfg.FuzzyThreshold); found {
		rep.skipped(fmt.Sprintf("⚠️ A channel named `%s` already exists. I skipped creating `%s` to avoid a duplicate.", match, action.Name))
		log.Info("skipped duplicate channel", zap.Int("action", index), zap.String("channel", action.Name), zap.String("match", match))
		return
	}

	req := guild.CreateChannelRequest{Name: action.Name, Kind: action.ChannelKind}
	categoryName := "None"
	if action.Category != "" {
		if c, found, err := e.findCategory(ctx, action.Category); err == nil && found {
			req.CategoryID = c.ID
			categoryName = c.Name
		}
	}
	if _, err := e.graph.CreateChannel(ctx, req); err != nil {
		rep.failed(fmt.Sprintf("Failed to create channel `%s`: %v", action.Name, err))
		return
	}
	rep.success(fmt.Sprintf("Created %s channel `#%s` in category `%s`.", action.ChannelKind, action.Name, categoryName))
}

func (e *Executor) renameCategory(ctx context.Context, action plan.Action, rep *Report) {
	c, found, err := e.findCategory(ctx, action.CurrentName)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to look up category `%s`: %v", action.CurrentName, err))
		return
	}
	if !found {
		rep.noop(fmt.Sprintf("category %q not found", action.CurrentName))
		return
	}
	if err := e.graph.RenameCategory(ctx, c.ID, action.NewName); err != nil {
		rep.failed(fmt.Sprintf("Failed to rename category `%s`: %v", action.CurrentName, err))
		return
	}
	rep.success(fmt.Sprintf("Renamed category `%s` to `%s`.", action.CurrentName, action.NewName))
}

func (e *Executor) deleteCategory(ctx context.Context, action plan.Action, rep *Report) {
	c, found, err := e.findCategory(ctx, action.Name)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to look up category `%s`: %v", action.Name, err))
		return
	}
	if !found {
		rep.noop(fmt.Sprintf("category %q not found", action.Name))
		return
	}
	if err := e.graph.DeleteCategory(ctx, c.ID); err != nil {
		rep.failed(fmt.Sprintf("Failed to delete category `%s`: %v", action.Name, err))
		return
	}
	rep.success(fmt.Sprintf("Deleted category `%s`.", action.Name))
}
