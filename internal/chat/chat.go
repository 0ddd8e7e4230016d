// Package chat keeps one conversational session per channel. Each session
// opens with a fixed priming turn establishing the bot's persona; history is
// pruned so a busy channel never grows an unbounded context.
package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"cruxy/internal/synthesis"
)

// DefaultMaxTurns is how many trailing turns a session keeps besides the
// priming turn.
const DefaultMaxTurns = 10

const primingPrompt = "You are a friendly and helpful Discord bot named Cruxy developed by Team ModVerse. Keep your replies conversational and concise, and stay on topic for a community chat server."

// Manager owns the per-channel sessions.
type Manager struct {
	client   synthesis.ChatClient
	logger   *zap.Logger
	maxTurns int

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu      sync.Mutex
	history []synthesis.Turn
}

// NewManager creates a chat manager. maxTurns <= 0 means DefaultMaxTurns.
func NewManager(client synthesis.ChatClient, logger *zap.Logger, maxTurns int) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Manager{
		client:   client,
		logger:   logger,
		maxTurns: maxTurns,
	}
}

// Handle sends one user message on the channel's session and returns the
// reply. A failed completion leaves the session history unchanged.
func (m *Manager) Handle(ctx context.Context, channelID, message string) (string, error) {
	s := m.session(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(m.maxTurns)
	turns := append(append([]synthesis.Turn(nil), s.history...),
		synthesis.Turn{Role: "user", Text: message})

	reply, err := m.client.CompleteChat(ctx, turns)
	if err != nil {
		m.logger.Warn("chat completion failed", zap.String("channel", channelID), zap.Error(err))
		return "", err
	}
	s.history = append(turns, synthesis.Turn{Role: "model", Text: reply})
	return reply, nil
}

// HistoryLen reports the current turn count of a channel's session,
// including the priming turn.
func (m *Manager) HistoryLen(channelID string) int {
	s := m.session(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Forget drops a channel's session so the next message starts fresh.
func (m *Manager) Forget(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, channelID)
}

func (m *Manager) session(channelID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]*session)
	}
	s, ok := m.sessions[channelID]
	if !ok {
		s = &session{history: []synthesis.Turn{{Role: "user", Text: primingPrompt}}}
		m.sessions[channelID] = s
	}
	return s
}

// prune trims history to the priming turn plus the last max turns. Called
// with the session lock held.
func (s *session) prune(max int) {
	if len(s.history) <= max+1 {
		return
	}
	kept := make([]synthesis.Turn, 0, max+1)
	kept = append(kept, s.history[0])
	kept = append(kept, s.history[len(s.history)-max:]...)
	s.history = kept
}
