package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cruxy/internal/guild"
	"cruxy/internal/plan"
)

// ExecuteBuild applies a validated build plan. Progress is reported to the
// feedback sink phase by phase, and the consolidated summary is both sent
// and returned. The only returned error is a feedback-sink failure before
// anything ran; everything else is carried in the report.
func (e *Executor) ExecuteBuild(ctx context.Context, p *plan.BuildPlan, fb guild.Feedback, reset bool) (*Report, error) {
	runID := uuid.NewString()[:8]
	log := e.logger.With(zap.String("run", runID), zap.String("guild", e.graph.Info().ID))
	log.Info("starting build run", zap.Int("roles", len(p.Roles)), zap.Int("tasks", len(p.Tasks)), zap.Bool("reset", reset))

	rep := &Report{}
	ledger := NewLedger()

	firstStep, roleStep, channelStep := "", "Step 1/2", "Step 2/2"
	if reset {
		firstStep, roleStep, channelStep = "Step 1/3", "Step 2/3", "Step 3/3"
	}

	if reset {
		if err := fb.Send(ctx, fmt.Sprintf("**%s:** Wiping existing server structure...", firstStep)); err != nil {
			return nil, fmt.Errorf("feedback channel unreachable: %w", err)
		}
		e.reset(ctx, fb, rep, log)
		_ = fb.Send(ctx, fmt.Sprintf("**%s:** Creating roles...", roleStep))
	} else if err := fb.Send(ctx, fmt.Sprintf("**%s:** Creating roles...", roleStep)); err != nil {
		return nil, fmt.Errorf("feedback channel unreachable: %w", err)
	}
	e.createRoles(ctx, p.Roles, ledger, rep, log)

	_ = fb.Send(ctx, fmt.Sprintf("**%s:** Creating categories and channels...", channelStep))

	for i, task := range p.Tasks {
		switch task.Kind {
		case plan.TaskCreateCategory:
			e.createCategory(ctx, task, ledger, rep, log)
		case plan.TaskCreateChannel:
			e.createChannel(ctx, i, task, ledger, rep, log)
		}
	}

	_ = fb.Send(ctx, "✅ **Server setup complete!**")
	_ = fb.Send(ctx, rep.Summary())
	log.Info("build run finished",
		zap.Int("actions", len(rep.Actions)),
		zap.Int("notices", len(rep.Notices)))
	return rep, nil
}

// createRoles runs the role-creation phase. An existing role with the exact
// declared name is reused instead of duplicated.
func (e *Executor) createRoles(ctx context.Context, names []string, ledger *Ledger, rep *Report, log *zap.Logger) {
	existing, err := e.graph.Roles(ctx)
	if err != nil {
		rep.failed(fmt.Sprintf("Could not list existing roles: %v", err))
		existing = nil
	}
	byName := make(map[string]guild.Role, len(existing))
	for _, r := range existing {
		byName[r.Name] = r
	}

	for _, name := range names {
		if r, ok := byName[name]; ok {
			ledger.RecordRole(name, r)
			log.Debug("reusing existing role", zap.String("role", name))
			continue
		}
		r, err := e.graph.CreateRole(ctx, name)
		if err != nil {
			rep.failed(fmt.Sprintf("Failed to create role `%s`: %v", name, err))
			continue
		}
		ledger.RecordRole(name, r)
		rep.success(fmt.Sprintf("Created role `%s`.", name))
	}
}

func (e *Executor) createCategory(ctx context.Context, task plan.Task, ledger *Ledger, rep *Report, log *zap.Logger) {
	c, err := e.graph.CreateCategory(ctx, task.Name)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to create category `%s`: %v", task.Name, err))
		return
	}
	ledger.RecordCategory(task.Name, c)
	rep.success(fmt.Sprintf("Created category `%s`.", task.Name))
	log.Debug("created category", zap.String("category", task.Name), zap.String("id", c.ID))
}

func (e *Executor) createChannel(ctx context.Context, index int, task plan.Task, ledger *Ledger, rep *Report, log *zap.Logger) {
	// duplicate-avoidance checks the live state, not the synthesis snapshot
	live, err := e.graph.Channels(ctx)
	if err == nil {
		names := make([]string, len(live))
		for i, ch := range live {
			names[i] = ch.Name
		}
		if match, found := closestMatch(task.Name, names, e.cfg.FuzzyThreshold); found {
			rep.skipped(fmt.Sprintf("⚠️ A channel named `%s` already exists. I skipped creating `%s` to avoid a duplicate.", match, task.Name))
			log.Info("skipped duplicate channel", zap.Int("task", index), zap.String("channel", task.Name), zap.String("match", match))
			return
		}
	}

	req := guild.CreateChannelRequest{
		Name:       task.Name,
		Kind:       task.ChannelKind,
		Overwrites: e.overwrites(task.Permissions, ledger),
	}
	if task.ChannelKind == guild.KindText {
		req.Topic = task.Topic
	}
	if task.Category != "" {
		if c, ok := ledger.Category(task.Category); ok {
			req.CategoryID = c.ID
		} else {
			// category creation failed earlier; create uncategorized
			log.Warn("category reference unresolved, creating without category",
				zap.Int("task", index), zap.String("channel", task.Name), zap.String("category", task.Category))
		}
	}

	ch, err := e.graph.CreateChannel(ctx, req)
	if err != nil {
		rep.failed(fmt.Sprintf("Failed to create channel `%s`: %v", task.Name, err))
		return
	}
	rep.success(fmt.Sprintf("Created %s channel `#%s`.", task.ChannelKind, task.Name))

	if task.ChannelKind == guild.KindText && task.Message != "" {
		if err := e.graph.SendMessage(ctx, ch.ID, task.Message); err != nil {
			rep.skipped(fmt.Sprintf("Could not post the welcome message in `#%s`: %v", task.Name, err))
		}
	}
}

// overwrites translates a permission spec into concrete overwrites. Roles
// are resolved through the ledger; an allow entry whose role failed to
// create is simply left out.
func (e *Executor) overwrites(spec plan.PermissionSpec, ledger *Ledger) []guild.PermissionOverwrite {
	info := e.graph.Info()
	switch spec.Kind {
	case plan.PermissionReadOnly:
		return []guild.PermissionOverwrite{
			{TargetID: info.DefaultRoleID, TargetKind: guild.TargetRole, Send: guild.Deny},
		}
	case plan.PermissionRestricted:
		ows := []guild.PermissionOverwrite{
			{TargetID: info.DefaultRoleID, TargetKind: guild.TargetRole, View: guild.Deny},
			{TargetID: info.BotMemberID, TargetKind: guild.TargetMember, View: guild.Allow},
		}
		for _, name := range spec.Allow {
			if r, ok := ledger.Role(name); ok {
				ows = append(ows, guild.PermissionOverwrite{TargetID: r.ID, TargetKind: guild.TargetRole, View: guild.Allow})
			}
		}
		return ows
	default:
		return nil
	}
}
