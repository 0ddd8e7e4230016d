package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryActionsOnly(t *testing.T) {
	rep := &Report{}
	rep.success("Created role `Fan`.")
	rep.success("Created category `Main`.")

	got := rep.Summary()
	assert.Contains(t, got, "✅ **Actions Complete:**")
	assert.Contains(t, got, "- Created role `Fan`.")
	assert.Contains(t, got, "- Created category `Main`.")
	assert.NotContains(t, got, "Notifications")
}

func TestSummaryActionsAndNotices(t *testing.T) {
	rep := &Report{}
	rep.success("Created category `Main`.")
	rep.skipped("⚠️ A channel named `general` already exists. I skipped creating `genera` to avoid a duplicate.")
	rep.failed("Failed to create channel `rules`: permission denied")

	got := rep.Summary()
	assert.Contains(t, got, "✅ **Actions Complete:**")
	assert.Contains(t, got, "ℹ️ **Notifications:**")
	assert.Contains(t, got, "already exists")
	assert.Contains(t, got, "permission denied")
}

func TestSummaryNeverSilent(t *testing.T) {
	rep := &Report{}
	assert.Equal(t,
		"I understood your request, but I couldn't find any valid actions to take based on the current server state.",
		rep.Summary())

	// silent no-ops alone still produce the fallback message
	rep.noop("channel \"ghost\" not found")
	assert.Contains(t, rep.Summary(), "couldn't find any valid actions")
	assert.Empty(t, rep.Actions)
	assert.Empty(t, rep.Notices)
}

func TestOutcomesPreserveOrderAndKinds(t *testing.T) {
	rep := &Report{}
	rep.success("a")
	rep.skipped("b")
	rep.noop("c")
	rep.failed("d")

	outcomes := rep.Outcomes()
	assert.Len(t, outcomes, 4)
	assert.Equal(t, OutcomeSuccess, outcomes[0].Kind)
	assert.Equal(t, OutcomeSkipped, outcomes[1].Kind)
	assert.Equal(t, OutcomeSkipped, outcomes[2].Kind)
	assert.Equal(t, OutcomeFailed, outcomes[3].Kind)
	assert.True(t, rep.Failed())

	// returned slice is a copy
	outcomes[0].Kind = OutcomeFailed
	assert.Equal(t, OutcomeSuccess, rep.Outcomes()[0].Kind)
}
