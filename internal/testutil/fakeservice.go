// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"taskview/internal/service"
	"taskview/internal/task"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = &service.Error{Kind: service.KindServer, Status: http.StatusNotFound, Err: errNotFound{}}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

// ServerError builds a server-rejected error with the given status.
func ServerError(op string, status int) error {
	return &service.Error{Kind: service.KindServer, Op: op, Status: status, Err: errStatus(status)}
}

type errStatus int

func (e errStatus) Error() string { return http.StatusText(int(e)) }

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int64
	now    func() time.Time

	// Error injection for testing
	ListErr   error
	CreateErr error
	ToggleErr error
	UpdateErr error
	DeleteErr error

	// Calls counts every call by operation name ("list", "create", ...).
	Calls map[string]int
}

// NewFakeService creates an empty FakeService. IDs start at 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		now:    func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
		Calls:  make(map[string]int),
	}
}

// AddTask seeds a task and returns it.
func (f *FakeService) AddTask(title string, completed bool) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := task.Task{
		ID:        f.nextID,
		Title:     title,
		Completed: completed,
		CreatedAt: f.now(),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeService) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeService) count(op string) {
	f.Calls[op]++
}

func (f *FakeService) index(id int64) int {
	return slices.IndexFunc(f.tasks, func(t task.Task) bool { return t.ID == id })
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.tasks), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("create")
	if f.CreateErr != nil {
		return task.Task{}, f.CreateErr
	}
	t := task.Task{
		ID:          f.nextID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		CreatedAt:   f.now(),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// Toggle implements service.Service.
func (f *FakeService) Toggle(ctx context.Context, id int64) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("toggle")
	if f.ToggleErr != nil {
		return task.Task{}, f.ToggleErr
	}
	i := f.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	return f.tasks[i], nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("update")
	if f.UpdateErr != nil {
		return task.Task{}, f.UpdateErr
	}
	i := f.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	f.tasks[i].Title = d.Title
	f.tasks[i].Description = d.Description
	f.tasks[i].DueDate = d.DueDate
	return f.tasks[i], nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}
