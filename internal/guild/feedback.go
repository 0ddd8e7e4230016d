package guild

import (
	"context"
	"sync"
)

// Feedback is the status-message sink for one planning or execution run.
// Messages are delivered in order to a single destination. ChannelID reports
// the identity of that destination so the reset pre-step can exclude it from
// deletion.
type Feedback interface {
	Send(ctx context.Context, msg string) error
	ChannelID() string
}

// ChannelFeedback delivers status messages into a guild channel.
type ChannelFeedback struct {
	graph     Graph
	channelID string
}

// NewChannelFeedback binds a feedback sink to one channel of a graph.
func NewChannelFeedback(g Graph, channelID string) *ChannelFeedback {
	return &ChannelFeedback{graph: g, channelID: channelID}
}

func (f *ChannelFeedback) Send(ctx context.Context, msg string) error {
	return f.graph.SendMessage(ctx, f.channelID, msg)
}

func (f *ChannelFeedback) ChannelID() string { return f.channelID }

// BufferFeedback collects status messages in memory. Used by the CLI's
// dry-run path and by callers that relay the transcript elsewhere.
type BufferFeedback struct {
	mu    sync.Mutex
	id    string
	lines []string
}

// NewBufferFeedback creates a buffering sink. The id stands in for a channel
// identity so reset self-preservation still has something to compare against.
func NewBufferFeedback(id string) *BufferFeedback {
	return &BufferFeedback{id: id}
}

func (f *BufferFeedback) Send(_ context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, msg)
	return nil
}

func (f *BufferFeedback) ChannelID() string { return f.id }

// Lines returns a copy of everything sent so far.
func (f *BufferFeedback) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}
