// Package store is the persistence layer: per-guild moderation warnings,
// member XP and levels, automod settings, and reaction-role mappings, backed
// by a single SQLite file. AFK status is deliberately in-memory only and
// resets on restart.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps the bot database. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex

	afkMu sync.RWMutex
	afk   map[string]map[string]string // guild -> user -> away message
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: path,
		afk:    make(map[string]map[string]string),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS warnings (
		guild_id TEXT,
		user_id TEXT,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS user_data (
		guild_id TEXT,
		user_id TEXT,
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS automod_settings (
		guild_id TEXT PRIMARY KEY,
		profanity_filter INTEGER NOT NULL DEFAULT 0,
		warning_limit INTEGER NOT NULL DEFAULT 3,
		limit_action TEXT NOT NULL DEFAULT 'mute',
		mute_duration INTEGER NOT NULL DEFAULT 10
	);

	CREATE TABLE IF NOT EXISTS reaction_roles (
		message_id TEXT,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		emoji TEXT,
		role_id TEXT NOT NULL,
		PRIMARY KEY (message_id, emoji)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Warnings returns the warning count for a member, zero if none recorded.
func (s *Store) Warnings(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count FROM warnings WHERE guild_id=? AND user_id=?",
		guildID, userID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read warnings: %w", err)
	}
	return count, nil
}

// AddWarning increments a member's warning count and returns the new total.
func (s *Store) AddWarning(ctx context.Context, guildID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (guild_id, user_id, count) VALUES (?, ?, 1)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET count = count + 1`,
		guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to add warning: %w", err)
	}
	return s.Warnings(ctx, guildID, userID)
}

// ResetWarnings removes all warnings for a member.
func (s *Store) ResetWarnings(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM warnings WHERE guild_id=? AND user_id=?", guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to reset warnings: %w", err)
	}
	return nil
}

// UserData is a member's rank progress within one guild.
type UserData struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// UserData returns a member's XP and level, zero values if unseen.
func (s *Store) UserData(ctx context.Context, guildID, userID string) (UserData, error) {
	var d UserData
	err := s.db.QueryRowContext(ctx,
		"SELECT xp, level FROM user_data WHERE guild_id=? AND user_id=?",
		guildID, userID).Scan(&d.XP, &d.Level)
	if err == sql.ErrNoRows {
		return UserData{}, nil
	}
	if err != nil {
		return UserData{}, fmt.Errorf("failed to read user data: %w", err)
	}
	return d, nil
}

// AddXP credits XP to a member and returns the resulting level. Crossing
// 100*(level+1) total XP advances the member one level per call.
func (s *Store) AddXP(ctx context.Context, guildID, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.UserData(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	newXP := d.XP + amount
	newLevel := d.Level
	if newXP >= 100*(newLevel+1) {
		newLevel++
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO user_data (guild_id, user_id, xp, level) VALUES (?, ?, ?, ?)",
		guildID, userID, newXP, newLevel)
	if err != nil {
		return 0, fmt.Errorf("failed to update user data: %w", err)
	}
	return newLevel, nil
}

// ResetLevels zeroes a member's XP and level without deleting the row.
func (s *Store) ResetLevels(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE user_data SET xp=0, level=0 WHERE guild_id=? AND user_id=?",
		guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to reset levels: %w", err)
	}
	return nil
}

// MinMessageXP and MaxMessageXP bound the XP credited for one message.
const (
	MinMessageXP = 5
	MaxMessageXP = 15
)

// MessageXPGain rolls the XP awarded for a single message. The connector
// layer calls this per message event and feeds the result to AddXP.
func MessageXPGain() int {
	return MinMessageXP + rand.IntN(MaxMessageXP-MinMessageXP+1)
}

// AddReactionRole persists one emoji-to-role mapping on a message. Re-adding
// the same emoji on the same message replaces the role.
func (s *Store) AddReactionRole(ctx context.Context, messageID, guildID, channelID, emoji, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reaction_roles
		(message_id, guild_id, channel_id, emoji, role_id)
		VALUES (?, ?, ?, ?, ?)`,
		messageID, guildID, channelID, emoji, roleID)
	if err != nil {
		return fmt.Errorf("failed to save reaction role: %w", err)
	}
	return nil
}

// AllReactionRoles loads every mapping, keyed message ID -> emoji -> role ID.
// Loaded once at startup into the reaction cache.
func (s *Store) AllReactionRoles(ctx context.Context) (map[string]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT message_id, emoji, role_id FROM reaction_roles")
	if err != nil {
		return nil, fmt.Errorf("failed to read reaction roles: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]map[string]string)
	for rows.Next() {
		var messageID, emoji, roleID string
		if err := rows.Scan(&messageID, &emoji, &roleID); err != nil {
			return nil, fmt.Errorf("failed to scan reaction role: %w", err)
		}
		if mapping[messageID] == nil {
			mapping[messageID] = make(map[string]string)
		}
		mapping[messageID][emoji] = roleID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reaction roles: %w", err)
	}
	return mapping, nil
}

// RemoveReactionRoles drops every mapping tied to a message, for when the
// message itself is deleted.
func (s *Store) RemoveReactionRoles(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM reaction_roles WHERE message_id=?", messageID)
	if err != nil {
		return fmt.Errorf("failed to remove reaction roles: %w", err)
	}
	return nil
}

// AutomodSettings is one guild's moderation policy as edited from the
// dashboard. Field names follow the dashboard API payload.
type AutomodSettings struct {
	ProfanityFilter bool   `json:"profanityFilter"`
	WarningLimit    int    `json:"warningLimit"`
	LimitAction     string `json:"limitAction"`
	MuteDuration    int    `json:"muteDuration"`
}

// DefaultAutomodSettings is what a guild gets before anyone saves settings.
func DefaultAutomodSettings() AutomodSettings {
	return AutomodSettings{
		ProfanityFilter: false,
		WarningLimit:    3,
		LimitAction:     "mute",
		MuteDuration:    10,
	}
}

// AutomodSettings returns a guild's moderation policy, defaults if unset.
func (s *Store) AutomodSettings(ctx context.Context, guildID string) (AutomodSettings, error) {
	var a AutomodSettings
	var profanity int
	err := s.db.QueryRowContext(ctx, `
		SELECT profanity_filter, warning_limit, limit_action, mute_duration
		FROM automod_settings WHERE guild_id=?`, guildID).
		Scan(&profanity, &a.WarningLimit, &a.LimitAction, &a.MuteDuration)
	if err == sql.ErrNoRows {
		return DefaultAutomodSettings(), nil
	}
	if err != nil {
		return AutomodSettings{}, fmt.Errorf("failed to read automod settings: %w", err)
	}
	a.ProfanityFilter = profanity != 0
	return a, nil
}

// SetAutomodSettings upserts a guild's moderation policy.
func (s *Store) SetAutomodSettings(ctx context.Context, guildID string, a AutomodSettings) error {
	profanity := 0
	if a.ProfanityFilter {
		profanity = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO automod_settings
		(guild_id, profanity_filter, warning_limit, limit_action, mute_duration)
		VALUES (?, ?, ?, ?, ?)`,
		guildID, profanity, a.WarningLimit, a.LimitAction, a.MuteDuration)
	if err != nil {
		return fmt.Errorf("failed to save automod settings: %w", err)
	}
	return nil
}

// SetAFK marks a member away with a message shown to anyone who mentions
// them.
func (s *Store) SetAFK(guildID, userID, message string) {
	s.afkMu.Lock()
	defer s.afkMu.Unlock()
	if s.afk[guildID] == nil {
		s.afk[guildID] = make(map[string]string)
	}
	s.afk[guildID][userID] = message
}

// AFK returns a member's away message, if any.
func (s *Store) AFK(guildID, userID string) (string, bool) {
	s.afkMu.RLock()
	defer s.afkMu.RUnlock()
	msg, ok := s.afk[guildID][userID]
	return msg, ok
}

// ClearAFK removes a member's away status and reports whether one was set.
func (s *Store) ClearAFK(guildID, userID string) bool {
	s.afkMu.Lock()
	defer s.afkMu.Unlock()
	if _, ok := s.afk[guildID][userID]; !ok {
		return false
	}
	delete(s.afk[guildID], userID)
	return true
}
