// Package store persists tasks in SQLite for the reference task API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskview/internal/task"
)

// ErrNotFound reports that no task has the requested id.
var ErrNotFound = errors.New("task not found")

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
)`

const columns = `id, title, description, due_date, completed, created_at`

// upgrades add the columns missing from a tasks table created by the
// earlier Flask app, which had only id, title, description and status.
var upgrades = []struct {
	column string
	ddl    string
}{
	{"description", `ALTER TABLE tasks ADD COLUMN description TEXT`},
	{"due_date", `ALTER TABLE tasks ADD COLUMN due_date TEXT`},
	{"completed", `ALTER TABLE tasks ADD COLUMN completed INTEGER NOT NULL DEFAULT 0`},
	{"created_at", `ALTER TABLE tasks ADD COLUMN created_at TEXT`},
}

// Store is a SQLite-backed task table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}
	if err := upgrade(db, time.Now()); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// upgrade brings an older tasks table up to the current columns. Rows
// without a creation time get now; a legacy status of done or completed
// marks the row completed.
func upgrade(db *sql.DB, now time.Time) error {
	have, err := tableColumns(db)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("unable to begin upgrade: %w", err)
	}
	defer tx.Rollback()

	added := map[string]bool{}
	for _, u := range upgrades {
		if have[u.column] {
			continue
		}
		if _, err := tx.Exec(u.ddl); err != nil {
			return fmt.Errorf("unable to add column %s: %w", u.column, err)
		}
		added[u.column] = true
	}
	if len(added) == 0 {
		return nil
	}

	if added["created_at"] {
		if _, err := tx.Exec(`UPDATE tasks SET created_at = ? WHERE created_at IS NULL`,
			now.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("unable to backfill created_at: %w", err)
		}
	}
	if added["completed"] && have["status"] {
		if _, err := tx.Exec(`UPDATE tasks SET completed = 1 WHERE lower(status) IN ('done', 'completed', 'complete')`); err != nil {
			return fmt.Errorf("unable to backfill completed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit upgrade: %w", err)
	}
	return nil
}

func tableColumns(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`PRAGMA table_info(tasks)`)
	if err != nil {
		return nil, fmt.Errorf("unable to read schema: %w", err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("unable to scan schema: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over schema: %w", err)
	}
	return cols, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every task in id order.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("unable to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return tasks, nil
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// Create inserts an active task and returns it.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, due_date, completed, created_at) VALUES (?, ?, ?, 0, ?)`,
		d.Title, nullString(d.Description), dueValue(d.DueDate), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("unable to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("unable to read task id: %w", err)
	}
	return s.Get(ctx, id)
}

// Toggle flips the completed flag and returns the updated task.
func (s *Store) Toggle(ctx context.Context, id int64) (task.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("unable to toggle task: %w", err)
	}
	if err := requireRow(res); err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

// Update replaces the editable fields and returns the updated task.
func (s *Store) Update(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due_date = ? WHERE id = ?`,
		d.Title, nullString(d.Description), dueValue(d.DueDate), id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("unable to update task: %w", err)
	}
	if err := requireRow(res); err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the task.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete task: %w", err)
	}
	return requireRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t         task.Task
		desc, due sql.NullString
		created   string
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &due, &t.Completed, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, ErrNotFound
		}
		return task.Task{}, fmt.Errorf("unable to scan task: %w", err)
	}
	t.Description = desc.String
	if due.Valid && due.String != "" {
		d, err := task.ParseDate(due.String)
		if err != nil {
			return task.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %d: invalid created_at: %w", t.ID, err)
	}
	t.CreatedAt = ts
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func dueValue(d *task.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
