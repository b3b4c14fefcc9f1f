package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ID is a server assigned task id. Numeric ids round-trip as JSON numbers.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// createdAtKeys are the field names servers have used for the creation time,
// in lookup order.
var createdAtKeys = []string{
	"createdAt", "created_at", "createdOn", "createdDate",
	"addedAt", "added_at", "timestamp", "timeCreated",
}

type wireTask struct {
	ID          ID              `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Deadline    string          `json:"deadline"`
	Status      *string         `json:"status"`
	Completed   json.RawMessage `json:"completed"`
	Priority    string          `json:"priority"`
	Tags        string          `json:"tags"`
}

// UnmarshalJSON decodes a task and normalizes its status once. A truthy
// legacy completed flag always means COMPLETED; otherwise a known status is
// kept and anything else is PENDING.
func (t *Task) UnmarshalJSON(b []byte) error {
	var w wireTask
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*t = Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Deadline:    w.Deadline,
		Priority:    ParsePriority(w.Priority),
		Tags:        w.Tags,
	}

	t.Status = StatusPending
	if truthy(w.Completed) {
		t.Status = StatusCompleted
	} else if w.Status != nil {
		if s, ok := ParseStatus(*w.Status); ok {
			t.Status = s
		}
	}

	for _, k := range createdAtKeys {
		raw, ok := fields[k]
		if !ok || isEmptyJSON(raw) {
			continue
		}
		if ts, ok := parseCreatedAt(raw); ok {
			t.CreatedAt = ts
		}
		break
	}
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          ID       `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Deadline    string   `json:"deadline"`
		Status      Status   `json:"status"`
		Completed   bool     `json:"completed"`
		Priority    Priority `json:"priority"`
		Tags        string   `json:"tags"`
		CreatedAt   string   `json:"createdAt,omitempty"`
	}{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Status:      t.Status,
		Completed:   t.Status == StatusCompleted,
		Priority:    t.Priority,
		Tags:        t.Tags,
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// MarshalJSON writes the legacy completed flag next to status so servers that
// still read the boolean stay consistent.
func (d Draft) MarshalJSON() ([]byte, error) {
	type plain Draft
	return json.Marshal(struct {
		plain
		Completed bool `json:"completed"`
	}{plain: plain(d), Completed: d.Status == StatusCompleted})
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := string(bytes.TrimSpace(raw))
	return s == "" || s == "null" || s == `""` || s == "0" || s == "false"
}

func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return false
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCreatedAt accepts epoch seconds or milliseconds (as numbers or digit
// strings) and the common date layouts.
func parseCreatedAt(raw json.RawMessage) (time.Time, bool) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return time.Time{}, false
	}
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(int64(f)), true
	case string:
		s := strings.TrimSpace(x)
		if digitsOnly.MatchString(s) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return fromEpoch(n), true
		}
		for _, layout := range createdAtLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func fromEpoch(n int64) time.Time {
	switch {
	case n > 1e12:
		return time.UnixMilli(n).UTC()
	case n > 1e9:
		return time.Unix(n, 0).UTC()
	}
	return time.UnixMilli(n).UTC()
}
