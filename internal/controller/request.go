package controller

import (
	"context"
	"fmt"

	"taskview/internal/task"
)

// Op names a remote operation.
type Op int

const (
	OpLoad Op = iota + 1
	OpCreate
	OpToggle
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpCreate:
		return "create"
	case OpToggle:
		return "toggle"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Request is a validated remote operation ready to send.
type Request struct {
	Op    Op
	ID    int64
	Draft task.Draft

	seq uint64
}

// Result is the outcome of sending a Request.
type Result struct {
	Request Request

	// Task is the record returned by create, toggle and update.
	Task task.Task

	// Tasks is the list returned by load.
	Tasks []task.Task

	// Err is the transport or server failure, if any.
	Err error
}

// NewLoad builds a load request.
func (c *Controller) NewLoad() Request {
	return c.request(OpLoad, 0, task.Draft{})
}

// NewCreate validates input and builds a create request. An invalid title
// or due date is reported and returned without a request.
func (c *Controller) NewCreate(title, description, due string) (Request, error) {
	d, err := task.NewDraft(title, description, due)
	if err != nil {
		return Request{}, c.validationError(OpCreate, err)
	}
	return c.request(OpCreate, 0, d), nil
}

// NewToggle builds a toggle request for id.
func (c *Controller) NewToggle(id int64) Request {
	if _, ok := c.cache.Find(id); !ok {
		c.logger.Debug("toggling task not in cache", "id", id)
	}
	return c.request(OpToggle, id, task.Draft{})
}

// NewUpdate validates input and builds an update request for id.
func (c *Controller) NewUpdate(id int64, title, description, due string) (Request, error) {
	d, err := task.NewDraft(title, description, due)
	if err != nil {
		return Request{}, c.validationError(OpUpdate, err)
	}
	return c.request(OpUpdate, id, d), nil
}

// NewDelete builds a delete request for id. An unconfirmed delete is
// cancelled with ErrNotConfirmed; it is not reported as a failure.
func (c *Controller) NewDelete(id int64, confirmed bool) (Request, error) {
	if !confirmed {
		return Request{}, ErrNotConfirmed
	}
	return c.request(OpDelete, id, task.Draft{}), nil
}

func (c *Controller) request(op Op, id int64, d task.Draft) Request {
	return Request{Op: op, ID: id, Draft: d, seq: c.seq.Add(1)}
}

// Send performs the remote call for req. It reads no session state.
func (c *Controller) Send(ctx context.Context, req Request) Result {
	res := Result{Request: req}
	switch req.Op {
	case OpLoad:
		res.Tasks, res.Err = c.svc.List(ctx)
	case OpCreate:
		res.Task, res.Err = c.svc.Create(ctx, req.Draft)
	case OpToggle:
		res.Task, res.Err = c.svc.Toggle(ctx, req.ID)
	case OpUpdate:
		res.Task, res.Err = c.svc.Update(ctx, req.ID, req.Draft)
	case OpDelete:
		res.Err = c.svc.Delete(ctx, req.ID)
	default:
		res.Err = fmt.Errorf("unknown operation: %s", req.Op)
	}
	return res
}

// Apply folds a result into the session. A failed result is reported and
// leaves the cache and edit state exactly as they were.
func (c *Controller) Apply(res Result) error {
	req := res.Request
	if res.Err != nil {
		c.report(res.Err)
		return res.Err
	}
	if err := validate(res); err != nil {
		c.report(err)
		return err
	}

	c.noteOrder(req, touched(res)...)

	switch req.Op {
	case OpLoad:
		c.cache.ReplaceAll(res.Tasks)
	case OpCreate:
		c.cache.Prepend(res.Task)
	case OpToggle:
		if !c.cache.Upsert(res.Task) {
			c.logger.Debug("toggled task not cached", "id", res.Task.ID)
		}
	case OpUpdate:
		if !c.cache.Upsert(res.Task) {
			c.logger.Debug("updated task not cached", "id", res.Task.ID)
		}
		if c.edits.IsEditing(req.ID) {
			c.edits.End()
		}
	case OpDelete:
		c.cache.Remove(req.ID)
	}

	c.logger.Debug("applied", "op", req.Op, "id", req.ID, "seq", req.seq, "cached", c.cache.Len())
	c.render()
	return nil
}

func validate(res Result) error {
	switch res.Request.Op {
	case OpLoad:
		seen := make(map[int64]bool, len(res.Tasks))
		for _, t := range res.Tasks {
			if err := t.Validate(); err != nil {
				return invalidRecord(OpLoad, err)
			}
			if seen[t.ID] {
				return invalidRecord(OpLoad, fmt.Errorf("duplicate task id %d", t.ID))
			}
			seen[t.ID] = true
		}
	case OpCreate, OpToggle, OpUpdate:
		if err := res.Task.Validate(); err != nil {
			return invalidRecord(res.Request.Op, err)
		}
		if res.Request.ID != 0 && res.Task.ID != res.Request.ID {
			return invalidRecord(res.Request.Op,
				fmt.Errorf("response for task %d carries id %d", res.Request.ID, res.Task.ID))
		}
	}
	return nil
}

// touched returns the ids whose cached record a result replaces.
func touched(res Result) []int64 {
	switch res.Request.Op {
	case OpLoad:
		ids := make([]int64, len(res.Tasks))
		for i, t := range res.Tasks {
			ids[i] = t.ID
		}
		return ids
	case OpCreate:
		return []int64{res.Task.ID}
	default:
		return []int64{res.Request.ID}
	}
}

// noteOrder raises the applied mark of each id to req's sequence. A
// response older than a mark already applied is still applied, in arrival
// order, but it is logged and counted once. Marks never move backwards.
func (c *Controller) noteOrder(req Request, ids ...int64) {
	var stale []int64
	for _, id := range ids {
		if last, ok := c.lastApplied[id]; ok && req.seq < last {
			stale = append(stale, id)
			continue
		}
		c.lastApplied[id] = req.seq
	}
	if len(stale) == 0 {
		return
	}
	c.staleApplied++
	c.logger.Warn("applying out-of-order response",
		"op", req.Op, "seq", req.seq, "stale_ids", stale)
}
