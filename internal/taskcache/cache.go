// Package taskcache holds the ordered, in-memory copy of the tasks the
// backend has returned during this session.
package taskcache

import (
	"iter"
	"slices"

	"taskview/internal/task"
)

// Cache is an ordered collection of tasks keyed by ID.
// Identifiers are unique within the cache. Cache is not safe for
// concurrent use; it is owned by a single controller.
type Cache struct {
	tasks []task.Task
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// ReplaceAll discards the current contents and stores records in order.
func (c *Cache) ReplaceAll(records []task.Task) {
	c.tasks = slices.Clone(records)
}

// Upsert replaces the record with the same ID in place.
// It reports false, and changes nothing, if no such record is cached.
func (c *Cache) Upsert(record task.Task) bool {
	i := c.index(record.ID)
	if i < 0 {
		return false
	}
	c.tasks[i] = record
	return true
}

// Prepend inserts record at the front. An existing record with the same
// ID is dropped first.
func (c *Cache) Prepend(record task.Task) {
	if i := c.index(record.ID); i >= 0 {
		c.tasks = slices.Delete(c.tasks, i, i+1)
	}
	c.tasks = slices.Insert(c.tasks, 0, record)
}

// Remove deletes the record with the given ID and reports whether it existed.
func (c *Cache) Remove(id int64) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.tasks = slices.Delete(c.tasks, i, i+1)
	return true
}

// Find returns the record with the given ID.
func (c *Cache) Find(id int64) (task.Task, bool) {
	i := c.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return c.tasks[i], true
}

// Filtered returns the records matching f in cache order.
// The sequence reads the cache each time it is ranged over.
func (c *Cache) Filtered(f task.Filter) iter.Seq[task.Task] {
	return func(yield func(task.Task) bool) {
		for _, t := range c.tasks {
			if !f.Match(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// All returns a copy of every cached record in order.
func (c *Cache) All() []task.Task {
	return slices.Clone(c.tasks)
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.tasks)
}

// Count returns how many records match f.
func (c *Cache) Count(f task.Filter) int {
	n := 0
	for range c.Filtered(f) {
		n++
	}
	return n
}

func (c *Cache) index(id int64) int {
	return slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
}
