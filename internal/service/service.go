// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"

	"taskview/internal/task"
)

// Service defines the interface for the remote task API.
// All HTTP calls go through this interface.
// The controller and commands never import the HTTP client directly.
type Service interface {
	// List returns every task in backend order.
	List(ctx context.Context) ([]task.Task, error)

	// Create creates a task and returns the stored record.
	Create(ctx context.Context, d task.Draft) (task.Task, error)

	// Toggle flips the completion flag and returns the updated record.
	Toggle(ctx context.Context, id int64) (task.Task, error)

	// Update replaces the editable fields and returns the updated record.
	Update(ctx context.Context, id int64, d task.Draft) (task.Task, error)

	// Delete deletes a task.
	Delete(ctx context.Context, id int64) error
}
