package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskflow/internal/task"
)

func TestTaskRepo_OrderAndUpdateKeepsPosition(t *testing.T) {
	r := NewTaskRepo()
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	a, err := r.Create("ada", task.NewDraft("A"), now)
	require.NoError(t, err)
	b, err := r.Create("ada", task.NewDraft("B"), now)
	require.NoError(t, err)
	_, err = r.Create("bob", task.NewDraft("other"), now)
	require.NoError(t, err)

	assert.Equal(t, []task.ID{a.ID, b.ID}, task.IDs(r.List("ada")))

	d := task.NewDraft("A2")
	d.Status = "completed"
	d.Priority = "urgent"
	updated, err := r.Update("ada", a.ID, d)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, updated.Status)
	assert.Equal(t, task.PriorityNormal, updated.Priority)
	assert.Equal(t, now, updated.CreatedAt)
	assert.Equal(t, "A2", r.List("ada")[0].Title)

	_, err = r.Update("bob", a.ID, d)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = r.Create("ada", task.NewDraft(""), now)
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestTaskRepo_Reorder(t *testing.T) {
	r := NewTaskRepo()
	now := time.Now()
	var ids []task.ID
	for _, title := range []string{"A", "B", "C"} {
		tk, err := r.Create("ada", task.NewDraft(title), now)
		require.NoError(t, err)
		ids = append(ids, tk.ID)
	}

	require.NoError(t, r.Reorder("ada", []task.ID{ids[1], ids[2], ids[0]}))
	assert.Equal(t, []task.ID{ids[1], ids[2], ids[0]}, task.IDs(r.List("ada")))

	assert.ErrorIs(t, r.Reorder("ada", ids[:2]), ErrNotPermutation)
	assert.ErrorIs(t, r.Reorder("ada", []task.ID{ids[0], ids[0], ids[1]}), ErrNotPermutation)

	require.NoError(t, r.Delete("ada", ids[2]))
	assert.Equal(t, []task.ID{ids[1], ids[0]}, task.IDs(r.List("ada")))
	assert.ErrorIs(t, r.Delete("ada", ids[2]), ErrTaskNotFound)
}

func TestUserRepo(t *testing.T) {
	r := NewUserRepo()
	r.cost = bcrypt.MinCost
	now := time.Now()

	_, err := r.Register("", "a@b.co", "secret", now)
	assert.ErrorIs(t, err, ErrMissingName)
	_, err = r.Register("Ada", "nope", "secret", now)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = r.Register("Ada", "a@b.co", "12345", now)
	assert.ErrorIs(t, err, ErrWeakPassword)

	u, err := r.Register("Ada", " A@B.co ", "secret", now)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", u.Email)
	_, err = r.Register("Ada", "a@b.co", "secret", now)
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = r.Authenticate("a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	got, err := r.Authenticate("A@B.CO", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestIssuer(t *testing.T) {
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	iss := NewIssuer("s3cret", time.Hour, clock)

	token, exp, err := iss.Issue("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	sub, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sub)

	_, err = NewIssuer("other", time.Hour, clock).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewIssuer("s3cret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
