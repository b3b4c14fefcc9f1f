package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTask(t *testing.T, raw string) Task {
	t.Helper()
	var tk Task
	require.NoError(t, json.Unmarshal([]byte(raw), &tk))
	return tk
}

func TestTask_UnmarshalNormalizesStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","status":"COMPLETED"}`).Status)
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","status":"PENDING","completed":true}`).Status)
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","status":"completed","completed":false}`).Status)
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","completed":true}`).Status)
	assert.Equal(t, StatusPending, decodeTask(t, `{"id":1,"title":"a","completed":false}`).Status)
	assert.Equal(t, StatusPending, decodeTask(t, `{"id":1,"title":"a"}`).Status)
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","status":"","completed":true}`).Status)
	assert.Equal(t, StatusCompleted, decodeTask(t, `{"id":1,"title":"a","status":"ARCHIVED","completed":1}`).Status)
}

func TestTask_UnmarshalIDs(t *testing.T) {
	assert.Equal(t, ID("42"), decodeTask(t, `{"id":42,"title":"a"}`).ID)
	assert.Equal(t, ID("t_9f"), decodeTask(t, `{"id":"t_9f","title":"a"}`).ID)
}

func TestTask_UnmarshalCreatedAtAliases(t *testing.T) {
	want := time.Date(2026, 2, 7, 9, 30, 0, 0, time.UTC)

	cases := map[string]string{
		"camel seconds":    `{"id":1,"createdAt":1770456600}`,
		"snake millis":     `{"id":1,"created_at":1770456600000}`,
		"digit string":     `{"id":1,"createdOn":"1770456600"}`,
		"rfc3339":          `{"id":1,"createdDate":"2026-02-07T09:30:00Z"}`,
		"local datetime":   `{"id":1,"timestamp":"2026-02-07T09:30:00"}`,
		"first key wins":   `{"id":1,"createdAt":"2026-02-07T09:30:00Z","addedAt":"1999-01-01"}`,
		"falsy is skipped": `{"id":1,"createdAt":"","timeCreated":"2026-02-07T09:30:00Z"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, want.Equal(decodeTask(t, raw).CreatedAt), "got %v", decodeTask(t, raw).CreatedAt)
		})
	}

	assert.True(t, decodeTask(t, `{"id":1,"createdAt":"not a date"}`).CreatedAt.IsZero())
	assert.True(t, decodeTask(t, `{"id":1}`).CreatedAt.IsZero())
}

func TestTask_MarshalWritesLegacyFlag(t *testing.T) {
	b, err := json.Marshal(Task{ID: "7", Title: "a", Status: StatusCompleted, Priority: PriorityHigh})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, float64(7), out["id"])
	assert.Equal(t, "COMPLETED", out["status"])
	assert.Equal(t, true, out["completed"])
	assert.NotContains(t, out, "createdAt")
}

func TestTask_RoundTripKeepsFields(t *testing.T) {
	in := Task{
		ID:          "t_1",
		Title:       "ship release",
		Description: "tag and push",
		Deadline:    "2026-03-01",
		Status:      StatusPending,
		Priority:    PriorityLow,
		Tags:        "work,release",
		CreatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, in, decodeTask(t, string(b)))
}

func TestDraft_MarshalIncludesCompleted(t *testing.T) {
	b, err := json.Marshal(Draft{Title: "a", Status: StatusCompleted, Priority: PriorityNormal})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "a", out["title"])
	assert.Equal(t, "COMPLETED", out["status"])
	assert.Equal(t, true, out["completed"])
}
