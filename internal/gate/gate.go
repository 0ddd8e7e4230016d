// Package gate holds synthesized build plans pending explicit user
// confirmation. Each pending plan is a one-shot state machine: exactly one
// of confirm, cancel, or expiry wins, and a confirmed plan triggers exactly
// one execution run.
package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cruxy/internal/plan"
)

// DefaultWindow is how long a proposed plan waits for a response before it
// expires.
const DefaultWindow = 180 * time.Second

var (
	// ErrUnknownPlan means the ID does not refer to a live pending plan.
	// Resolved plans are garbage-collected, so a stale confirm lands here.
	ErrUnknownPlan = errors.New("gate: no such pending plan")
	// ErrNotRequester means someone other than the original requester tried
	// to resolve the plan.
	ErrNotRequester = errors.New("gate: only the requester may resolve this plan")
	// ErrAlreadyResolved means a terminal transition already fired.
	ErrAlreadyResolved = errors.New("gate: plan already resolved")
)

// State is the lifecycle position of a pending plan.
type State string

const (
	StateProposed  State = "proposed"
	StateConfirmed State = "confirmed"
	StateCancelled State = "cancelled"
	StateExpired   State = "expired"
)

// ExecuteFunc runs a confirmed plan. The gate calls it at most once.
type ExecuteFunc func(ctx context.Context) error

// Pending ties one synthesized build plan to one requester. The plan and
// reset flag are exposed for preview rendering; execution goes through the
// captured run function.
type Pending struct {
	ID          string
	RequesterID string
	Plan        *plan.BuildPlan
	Reset       bool
	CreatedAt   time.Time

	mu    sync.Mutex
	state State
	timer *time.Timer
	run   ExecuteFunc
}

// State returns the current lifecycle position.
func (p *Pending) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// resolve is the one-shot check-and-set out of Proposed. It reports whether
// this caller won the transition.
func (p *Pending) resolve(to State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateProposed {
		return false
	}
	p.state = to
	if p.timer != nil {
		p.timer.Stop()
	}
	return true
}

// Gate is the registry of pending plans, keyed by ID. Plans leave the
// registry the moment they resolve; an expired or cancelled plan cannot be
// resurrected, the user has to re-request synthesis.
type Gate struct {
	window time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*Pending
}

// New creates a gate with the given confirmation window. A non-positive
// window falls back to DefaultWindow.
func New(window time.Duration, logger *zap.Logger) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		window:  window,
		logger:  logger,
		pending: make(map[string]*Pending),
	}
}

// Propose registers a synthesized plan and starts its expiry timer. onExpire,
// if non-nil, runs when the window elapses with no response; it is never
// called once confirm or cancel has won.
func (g *Gate) Propose(requesterID string, p *plan.BuildPlan, reset bool, run ExecuteFunc, onExpire func()) *Pending {
	pd := &Pending{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		Plan:        p,
		Reset:       reset,
		CreatedAt:   time.Now(),
		state:       StateProposed,
		run:         run,
	}
	g.mu.Lock()
	g.pending[pd.ID] = pd
	g.mu.Unlock()

	pd.mu.Lock()
	pd.timer = time.AfterFunc(g.window, func() { g.expire(pd, onExpire) })
	pd.mu.Unlock()

	g.logger.Info("plan proposed",
		zap.String("plan", pd.ID),
		zap.String("requester", requesterID),
		zap.Duration("window", g.window))
	return pd
}

// Confirm resolves a pending plan in favor of execution and runs it in the
// caller's goroutine. Whatever the executor returns is passed through.
func (g *Gate) Confirm(ctx context.Context, id, requesterID string) error {
	pd, ok := g.lookup(id)
	if !ok {
		return ErrUnknownPlan
	}
	if pd.RequesterID != requesterID {
		return ErrNotRequester
	}
	if !pd.resolve(StateConfirmed) {
		return ErrAlreadyResolved
	}
	g.remove(id)
	g.logger.Info("plan confirmed", zap.String("plan", id))
	return pd.run(ctx)
}

// Cancel resolves a pending plan without executing it.
func (g *Gate) Cancel(id, requesterID string) error {
	pd, ok := g.lookup(id)
	if !ok {
		return ErrUnknownPlan
	}
	if pd.RequesterID != requesterID {
		return ErrNotRequester
	}
	if !pd.resolve(StateCancelled) {
		return ErrAlreadyResolved
	}
	g.remove(id)
	g.logger.Info("plan cancelled", zap.String("plan", id))
	return nil
}

func (g *Gate) expire(pd *Pending, onExpire func()) {
	if !pd.resolve(StateExpired) {
		return
	}
	g.remove(pd.ID)
	g.logger.Info("plan expired", zap.String("plan", pd.ID))
	if onExpire != nil {
		onExpire()
	}
}

func (g *Gate) lookup(id string) (*Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pd, ok := g.pending[id]
	return pd, ok
}

func (g *Gate) remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}
