package guild

import "context"

// SnapshotChannel is one channel entry in a snapshot.
type SnapshotChannel struct {
	Name     string
	Kind     ChannelKind
	Category string // owning category name, empty when uncategorized
}

// Snapshot is a read-only, point-in-time view of a guild's structure. It is
// built once before synthesis and never refreshed; staleness is handled by
// the executor's live duplicate-avoidance check, not here.
type Snapshot struct {
	Categories []string
	Channels   []SnapshotChannel
}

// TakeSnapshot reads the current structure in a single pass. It never
// mutates the graph.
func TakeSnapshot(ctx context.Context, g Graph) (Snapshot, error) {
	cats, err := g.Categories(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	chans, err := g.Channels(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Categories: make([]string, 0, len(cats)),
		Channels:   make([]SnapshotChannel, 0, len(chans)),
	}
	byID := make(map[string]string, len(cats))
	for _, c := range cats {
		snap.Categories = append(snap.Categories, c.Name)
		byID[c.ID] = c.Name
	}
	for _, ch := range chans {
		snap.Channels = append(snap.Channels, SnapshotChannel{
			Name:     ch.Name,
			Kind:     ch.Kind,
			Category: byID[ch.CategoryID],
		})
	}
	return snap, nil
}

// HasCategory reports whether a category with the exact name exists.
func (s Snapshot) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ChannelNames returns the names of all channels of the given kind.
func (s Snapshot) ChannelNames(kind ChannelKind) []string {
	names := make([]string, 0, len(s.Channels))
	for _, ch := range s.Channels {
		if ch.Kind == kind {
			names = append(names, ch.Name)
		}
	}
	return names
}
