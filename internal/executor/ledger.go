package executor

import "cruxy/internal/guild"

// Ledger maps declared names to the live handles created for them during one
// execution run. Later tasks resolve their references through it; it is
// discarded when the run ends.
type Ledger struct {
	roles      map[string]guild.Role
	categories map[string]guild.Category
}

// NewLedger creates an empty ledger for one run.
func NewLedger() *Ledger {
	return &Ledger{
		roles:      make(map[string]guild.Role),
		categories: make(map[string]guild.Category),
	}
}

// RecordRole remembers the live role behind a declared role name.
func (l *Ledger) RecordRole(name string, r guild.Role) { l.roles[name] = r }

// Role resolves a declared role name.
func (l *Ledger) Role(name string) (guild.Role, bool) {
	r, ok := l.roles[name]
	return r, ok
}

// RecordCategory remembers the live category behind a declared name.
func (l *Ledger) RecordCategory(name string, c guild.Category) { l.categories[name] = c }

// Category resolves a declared category name.
func (l *Ledger) Category(name string) (guild.Category, bool) {
	c, ok := l.categories[name]
	return c, ok
}
