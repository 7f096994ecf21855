// Package dispatch sequences every task mutation: validate locally, call the
// backend, and only after the success response re-fetch the whole collection.
// There is no optimistic local patching; the store's snapshot only ever
// changes through a refresh.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/store"
)

// TaskAPI is the slice of the SDK the dispatcher mutates through.
type TaskAPI interface {
	CreateTask(ctx context.Context, req client.CreateTaskRequest) (*client.Task, error)
	UpdateTask(ctx context.Context, id int64, req client.UpdateTaskRequest) (*client.Task, error)
	ToggleTask(ctx context.Context, id int64) (*client.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// ChatAPI is the slice of the SDK the assistant surface talks through.
type ChatAPI interface {
	SendMessage(ctx context.Context, message string) (*client.ChatReply, error)
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) bool

// ErrEditInProgress is returned when an edit is started while another
// record's edit session is still open. One edit session at a time: the open
// one must be saved or cancelled first, so its buffer can never bleed into
// another record's fields.
var ErrEditInProgress = errors.New("another edit is in progress; save or cancel it first")

// EditSession is the edit buffer for a single record, seeded from the cached
// copy when editing starts.
type EditSession struct {
	ID          int64
	Title       string
	Description string
}

// Dispatcher issues mutations and drives the follow-up refresh. It is the
// only writer of the task store's refresh cycle outside the initial load.
type Dispatcher struct {
	tasks      TaskAPI
	chat       ChatAPI
	store      *store.TaskStore
	transcript *store.Transcript
	bus        *notify.Bus
	confirm    ConfirmFunc

	edit *EditSession
}

// New wires a Dispatcher. confirm guards deletes; a nil confirm refuses all
// deletes rather than silently approving them.
func New(tasks TaskAPI, chat ChatAPI, st *store.TaskStore, tr *store.Transcript, bus *notify.Bus, confirm ConfirmFunc) *Dispatcher {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return &Dispatcher{
		tasks:      tasks,
		chat:       chat,
		store:      st,
		transcript: tr,
		bus:        bus,
		confirm:    confirm,
	}
}

// opErr maps an operational failure to an inline message specific to the
// attempted action. Unauthorized errors stay reachable through errors.Is so
// the error surface can give them precedence.
func opErr(action string, err error) error {
	return fmt.Errorf("failed to %s: %w", action, err)
}

// refresh re-fetches the collection after a successful mutation.
func (d *Dispatcher) refresh(ctx context.Context) error {
	if err := d.store.Refresh(ctx); err != nil {
		return opErr("load tasks", err)
	}
	return nil
}

// Create validates and submits a new task, then refreshes. An empty
// description is sent as null.
func (d *Dispatcher) Create(ctx context.Context, title, description string) error {
	if err := client.ValidateTitle(title); err != nil {
		return opErr("create task", err)
	}
	if err := client.ValidateDescription(description); err != nil {
		return opErr("create task", err)
	}
	req := client.CreateTaskRequest{
		Title:       title,
		Description: client.NullableDescription(description),
	}
	task, err := d.tasks.CreateTask(ctx, req)
	if err != nil {
		return opErr("create task", err)
	}
	log.Debug().Int64("task_id", task.ID).Msg("task created")
	return d.refresh(ctx)
}

// Toggle flips one record's status server-side and refreshes. The cached
// copy is never flipped ahead of the acknowledgement.
func (d *Dispatcher) Toggle(ctx context.Context, id int64) error {
	if _, err := d.tasks.ToggleTask(ctx, id); err != nil {
		return opErr("toggle task", err)
	}
	return d.refresh(ctx)
}

// Delete asks for confirmation, then removes the record and refreshes.
// A declined confirmation sends nothing and changes nothing.
func (d *Dispatcher) Delete(ctx context.Context, id int64) error {
	if !d.confirm(fmt.Sprintf("Delete task %d?", id)) {
		log.Debug().Int64("task_id", id).Msg("delete declined")
		return nil
	}
	if err := d.tasks.DeleteTask(ctx, id); err != nil {
		return opErr("delete task", err)
	}
	return d.refresh(ctx)
}

// --------------------------------------------------------------------
// Edit session state machine: Viewing <-> Editing, one record at a time
// --------------------------------------------------------------------

// BeginEdit opens an edit session for id, seeding the buffer from the cached
// record. It fails if another session is open or the record is unknown.
func (d *Dispatcher) BeginEdit(id int64) (*EditSession, error) {
	if d.edit != nil && d.edit.ID != id {
		return nil, ErrEditInProgress
	}
	task, ok := d.store.Get(id)
	if !ok {
		return nil, opErr("edit task", fmt.Errorf("no task with id %d", id))
	}
	var desc string
	if task.Description != nil {
		desc = *task.Description
	}
	d.edit = &EditSession{ID: id, Title: task.Title, Description: desc}
	return d.edit, nil
}

// Editing returns the open edit session, if any.
func (d *Dispatcher) Editing() (EditSession, bool) {
	if d.edit == nil {
		return EditSession{}, false
	}
	return *d.edit, true
}

// CancelEdit discards the edit buffer and returns to viewing.
func (d *Dispatcher) CancelEdit() {
	d.edit = nil
}

// SaveEdit submits the edited title and description. On success the session
// closes and the store refreshes. An operational failure keeps the session
// open for retry; an authorization failure discards it, since the caller is
// about to be routed to login.
func (d *Dispatcher) SaveEdit(ctx context.Context, title, description string) error {
	if d.edit == nil {
		return opErr("update task", fmt.Errorf("no edit in progress"))
	}
	if err := client.ValidateTitle(title); err != nil {
		return opErr("update task", err)
	}
	if err := client.ValidateDescription(description); err != nil {
		return opErr("update task", err)
	}
	req := client.UpdateTaskRequest{
		Title:       title,
		Description: client.NullableDescription(description),
	}
	if _, err := d.tasks.UpdateTask(ctx, d.edit.ID, req); err != nil {
		if client.IsUnauthorized(err) {
			d.edit = nil
		}
		return opErr("update task", err)
	}
	d.edit = nil
	return d.refresh(ctx)
}
