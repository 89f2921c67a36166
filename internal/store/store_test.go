package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskview/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due, err := task.ParseDate("2024-03-15")
	require.NoError(t, err)

	a, err := s.Create(ctx, task.Draft{Title: "A", Description: "first", DueDate: &due})
	require.NoError(t, err)
	b, err := s.Create(ctx, task.Draft{Title: "B"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.Completed)
	assert.Equal(t, "first", a.Description)
	require.NotNil(t, a.DueDate)
	assert.Equal(t, "2024-03-15", a.DueDate.String())
	assert.Nil(t, b.DueDate)
	assert.Equal(t, "", b.Description)
	assert.True(t, a.CreatedAt.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].Title)
	assert.Equal(t, "B", tasks[1].Title)
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestToggle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, task.Draft{Title: "A"})
	require.NoError(t, err)

	toggled, err := s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestUpdateReplacesEditableFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	due, _ := task.ParseDate("2024-03-15")
	created, err := s.Create(ctx, task.Draft{Title: "A", Description: "old", DueDate: &due})
	require.NoError(t, err)
	_, err = s.Toggle(ctx, created.ID)
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, task.Draft{Title: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.True(t, updated.Completed, "update keeps completion")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, task.Draft{Title: "A"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Toggle(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, 42, task.Draft{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 42), ErrNotFound)
}

func TestOpenFileReopens(t *testing.T) {
	path := t.TempDir() + "/tasks.db"
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Create(ctx, task.Draft{Title: "persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "persisted", tasks[0].Title)
}

func TestOpenUpgradesLegacyTable(t *testing.T) {
	path := t.TempDir() + "/tasks.db"
	ctx := context.Background()

	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT DEFAULT 'pending'
	)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO tasks (title, description) VALUES ('Buy milk', '2 litres')`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO tasks (title, description, status) VALUES ('Call mom', NULL, 'done')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, "2 litres", tasks[0].Description)
	assert.False(t, tasks[0].Completed)
	assert.True(t, tasks[1].Completed)
	assert.False(t, tasks[1].CreatedAt.IsZero())
	assert.Nil(t, tasks[0].DueDate)

	created, err := s.Create(ctx, task.Draft{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	// A second open finds nothing to upgrade.
	require.NoError(t, s.Close())
	s, err = Open(path)
	require.NoError(t, err)
	tasks, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}
