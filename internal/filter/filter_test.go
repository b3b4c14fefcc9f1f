package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

var now = time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

func fixture() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Pay rent", Status: task.StatusCompleted, Deadline: "2026-02-01"},
		{ID: "2", Title: "Fix login bug", Description: "Safari only", Status: task.StatusPending, Tags: "work,urgent", Deadline: "2026-02-05"},
		{ID: "3", Title: "Book flights", Status: task.StatusPending, Deadline: "2026-03-01"},
		{ID: "4", Title: "Renew passport", Status: task.StatusCompleted, Tags: "Personal"},
	}
}

func ids(tasks []task.Task) []task.ID { return task.IDs(tasks) }

func TestApply_Stats(t *testing.T) {
	_, stats := Apply(fixture(), State{Status: All}, now)
	assert.Equal(t, Stats{Total: 4, Completed: 2, InProgress: 2, Overdue: 1, CompletionRate: 50}, stats)
}

// wireFixture is the same shape of collection as it arrives from the server,
// including a task that only carries the legacy completed flag.
const wireFixture = `[
	{"id":1,"title":"Pay rent","status":"COMPLETED"},
	{"id":2,"title":"Fix login bug","status":"PENDING","deadline":"2026-02-06"},
	{"id":3,"title":"Book flights","status":"PENDING"},
	{"id":4,"title":"Renew passport","completed":true,"deadline":"2026-01-01"}
]`

func decodeTasks(t *testing.T, raw string) []task.Task {
	t.Helper()
	var tasks []task.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &tasks))
	return tasks
}

func TestApply_StatsFromWire(t *testing.T) {
	view, stats := Apply(decodeTasks(t, wireFixture), State{Status: All}, now)
	assert.Len(t, view, 4)
	assert.Equal(t, Stats{Total: 4, Completed: 2, InProgress: 2, Overdue: 1, CompletionRate: 50}, stats)

	done, _ := Apply(decodeTasks(t, wireFixture), State{Status: Completed}, now)
	assert.Equal(t, []task.ID{"1", "4"}, ids(done))
}

func TestApply_LegacyFlagOverridesPendingStatus(t *testing.T) {
	tasks := decodeTasks(t, `[{"id":9,"status":"PENDING","completed":true,"deadline":"2026-01-01"}]`)

	view, stats := Apply(tasks, State{Status: Completed}, now)
	assert.Equal(t, []task.ID{"9"}, ids(view))
	assert.Equal(t, Stats{Total: 1, Completed: 1, CompletionRate: 100}, stats)

	pending, _ := Apply(tasks, State{Status: Pending}, now)
	assert.Empty(t, pending)
}

func TestApply_StatsIgnoreFilter(t *testing.T) {
	view, stats := Apply(fixture(), State{Status: Completed, Query: "passport"}, now)
	assert.Equal(t, []task.ID{"4"}, ids(view))
	assert.Equal(t, 4, stats.Total)
}

func TestApply_StatusFilter(t *testing.T) {
	view, _ := Apply(fixture(), State{Status: Pending}, now)
	assert.Equal(t, []task.ID{"2", "3"}, ids(view))

	view, _ = Apply(fixture(), State{Status: Completed}, now)
	assert.Equal(t, []task.ID{"1", "4"}, ids(view))

	view, _ = Apply(fixture(), State{}, now)
	assert.Len(t, view, 4)
}

func TestApply_SearchMatchesTagsCaseInsensitive(t *testing.T) {
	view, _ := Apply(fixture(), State{Status: All, Query: "URGENT"}, now)
	assert.Equal(t, []task.ID{"2"}, ids(view))

	view, _ = Apply(fixture(), State{Status: All, Query: "safari"}, now)
	assert.Equal(t, []task.ID{"2"}, ids(view))

	view, _ = Apply(fixture(), State{Status: All, Query: "personal"}, now)
	assert.Equal(t, []task.ID{"4"}, ids(view))

	view, _ = Apply(fixture(), State{Status: All, Query: "   "}, now)
	assert.Len(t, view, 4)
}

func TestApply_OverdueBoundary(t *testing.T) {
	tasks := []task.Task{{ID: "1", Title: "x", Status: task.StatusPending, Deadline: "2026-02-07"}}

	_, stats := Apply(tasks, State{}, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, stats.Overdue)

	_, stats = Apply(tasks, State{}, time.Date(2026, 2, 7, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, 1, stats.Overdue)
}

func TestApply_Empty(t *testing.T) {
	view, stats := Apply(nil, State{Status: Pending}, now)
	assert.Empty(t, view)
	assert.Equal(t, Stats{}, stats)
}

func TestCompletionRateRounds(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Status: task.StatusCompleted},
		{ID: "2", Status: task.StatusCompleted},
		{ID: "3", Status: task.StatusPending},
	}
	assert.Equal(t, 67, Summarize(tasks, now).CompletionRate)
}

func TestRecent(t *testing.T) {
	assert.Equal(t, []task.ID{"1", "2", "3"}, ids(Recent(fixture())))
	assert.Equal(t, []task.ID{"1"}, ids(Recent(fixture()[:1])))
	assert.Empty(t, Recent(nil))
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]StatusFilter{
		"":          All,
		"all":       All,
		"Pending":   Pending,
		"todo":      Pending,
		"completed": Completed,
		"done":      Completed,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}
