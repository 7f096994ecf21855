package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/store"
)

// fakeAPI is an in-memory backend recording the order of calls.
type fakeAPI struct {
	calls  []string
	nextID int64
	tasks  []client.Task

	failList   error
	failCreate error
	failUpdate error
	failToggle error
	failDelete error

	chatReply *client.ChatReply
	failChat  error
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]client.Task, error) {
	f.calls = append(f.calls, "list")
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]client.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, req client.CreateTaskRequest) (*client.Task, error) {
	f.calls = append(f.calls, "create")
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.nextID++
	t := client.Task{ID: f.nextID, Title: req.Title, Description: req.Description, Status: client.StatusPending}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id int64, req client.UpdateTaskRequest) (*client.Task, error) {
	f.calls = append(f.calls, "update")
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = req.Title
			f.tasks[i].Description = req.Description
			return &f.tasks[i], nil
		}
	}
	return nil, &client.APIError{Op: "update task", Status: 404, Detail: "task not found"}
}

func (f *fakeAPI) ToggleTask(ctx context.Context, id int64) (*client.Task, error) {
	f.calls = append(f.calls, "toggle")
	if f.failToggle != nil {
		return nil, f.failToggle
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if f.tasks[i].Status == client.StatusPending {
				f.tasks[i].Status = client.StatusComplete
			} else {
				f.tasks[i].Status = client.StatusPending
			}
			return &f.tasks[i], nil
		}
	}
	return nil, &client.APIError{Op: "toggle task", Status: 404, Detail: "task not found"}
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id int64) error {
	f.calls = append(f.calls, "delete")
	if f.failDelete != nil {
		return f.failDelete
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Op: "delete task", Status: 404, Detail: "task not found"}
}

func (f *fakeAPI) SendMessage(ctx context.Context, message string) (*client.ChatReply, error) {
	f.calls = append(f.calls, "chat")
	if f.failChat != nil {
		return nil, f.failChat
	}
	if f.chatReply != nil {
		return f.chatReply, nil
	}
	return &client.ChatReply{Response: "ok", Action: client.ActionGeneral}, nil
}

type fixture struct {
	api        *fakeAPI
	tasks      *store.TaskStore
	transcript *store.Transcript
	bus        *notify.Bus
	disp       *Dispatcher
	confirmed  bool
}

func newFixture(t *testing.T, confirm ConfirmFunc) *fixture {
	t.Helper()
	api := &fakeAPI{}
	ts := store.NewTaskStore(api)
	tr := store.NewTranscript()
	bus := notify.NewBus()
	return &fixture{
		api:        api,
		tasks:      ts,
		transcript: tr,
		bus:        bus,
		disp:       New(api, api, ts, tr, bus, confirm),
	}
}

func seed(t *testing.T, fx *fixture, titles ...string) {
	t.Helper()
	for _, title := range titles {
		fx.api.nextID++
		fx.api.tasks = append(fx.api.tasks, client.Task{ID: fx.api.nextID, Title: title, Status: client.StatusPending})
	}
	require.NoError(t, fx.tasks.Refresh(context.Background()))
	fx.api.calls = nil
}

func TestCreateRefreshesAfterSuccess(t *testing.T) {
	fx := newFixture(t, nil)
	require.NoError(t, fx.disp.Create(context.Background(), "Buy milk", ""))

	// Exactly one refresh, and it follows the mutation's success response.
	require.Equal(t, []string{"create", "list"}, fx.api.calls)
	tasks := fx.tasks.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "Buy milk", tasks[0].Title)
	require.Nil(t, tasks[0].Description)
	require.Equal(t, client.StatusPending, tasks[0].Status)
}

func TestCreateValidationFailsBeforeAnyRequest(t *testing.T) {
	fx := newFixture(t, nil)
	err := fx.disp.Create(context.Background(), "   ", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create task")
	require.Empty(t, fx.api.calls)
}

func TestFailedMutationLeavesListUnchanged(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "existing")

	fx.api.failCreate = &client.APIError{Op: "create task", Status: 500, Detail: "boom"}
	err := fx.disp.Create(context.Background(), "new task", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create task")

	// No refresh was issued and the prior list is intact.
	require.Equal(t, []string{"create"}, fx.api.calls)
	tasks := fx.tasks.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "existing", tasks[0].Title)
}

func TestToggleAlternatesStatus(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "flip me")

	require.NoError(t, fx.disp.Toggle(context.Background(), 1))
	require.Equal(t, client.StatusComplete, fx.tasks.Tasks()[0].Status)

	require.NoError(t, fx.disp.Toggle(context.Background(), 1))
	require.Equal(t, client.StatusPending, fx.tasks.Tasks()[0].Status)

	require.NoError(t, fx.disp.Toggle(context.Background(), 1))
	require.Equal(t, client.StatusComplete, fx.tasks.Tasks()[0].Status)
}

func TestToggleUnknownIDIsOperational(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "only")

	err := fx.disp.Toggle(context.Background(), 999)
	require.Error(t, err)
	require.False(t, client.IsUnauthorized(err))
	require.Contains(t, err.Error(), "failed to toggle task")
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	declined := func(string) bool { return false }
	fx := newFixture(t, declined)
	seed(t, fx, "survivor")

	require.NoError(t, fx.disp.Delete(context.Background(), 1))
	require.Empty(t, fx.api.calls)
	require.Equal(t, 1, fx.tasks.Len())
}

func TestDeleteConfirmedRefreshes(t *testing.T) {
	confirmed := func(string) bool { return true }
	fx := newFixture(t, confirmed)
	seed(t, fx, "doomed")

	require.NoError(t, fx.disp.Delete(context.Background(), 1))
	require.Equal(t, []string{"delete", "list"}, fx.api.calls)
	require.Zero(t, fx.tasks.Len())
}

func TestNilConfirmRefusesDeletes(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "kept")

	require.NoError(t, fx.disp.Delete(context.Background(), 1))
	require.Empty(t, fx.api.calls)
	require.Equal(t, 1, fx.tasks.Len())
}

// --------------------------------------------------------------------
// Edit session state machine
// --------------------------------------------------------------------

func TestBeginEditSeedsFromCachedRecord(t *testing.T) {
	fx := newFixture(t, nil)
	desc := "details"
	fx.api.nextID = 1
	fx.api.tasks = []client.Task{{ID: 1, Title: "original", Description: &desc, Status: client.StatusPending}}
	require.NoError(t, fx.tasks.Refresh(context.Background()))

	seeded, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)
	require.Equal(t, "original", seeded.Title)
	require.Equal(t, "details", seeded.Description)

	open, ok := fx.disp.Editing()
	require.True(t, ok)
	require.Equal(t, int64(1), open.ID)
}

func TestSingleEditSessionInvariant(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "first", "second")

	_, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)

	// Starting a second edit without resolving the first must fail, and
	// record A's buffer must not leak into record B's fields.
	_, err = fx.disp.BeginEdit(2)
	require.ErrorIs(t, err, ErrEditInProgress)
	open, ok := fx.disp.Editing()
	require.True(t, ok)
	require.Equal(t, int64(1), open.ID)
	require.Equal(t, "first", open.Title)

	fx.disp.CancelEdit()
	seeded, err := fx.disp.BeginEdit(2)
	require.NoError(t, err)
	require.Equal(t, "second", seeded.Title)
}

func TestSaveEditClosesSessionAndRefreshes(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "before")

	_, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)
	require.NoError(t, fx.disp.SaveEdit(context.Background(), "after", "new details"))

	_, ok := fx.disp.Editing()
	require.False(t, ok)
	require.Equal(t, []string{"update", "list"}, fx.api.calls)
	tasks := fx.tasks.Tasks()
	require.Equal(t, "after", tasks[0].Title)
	require.NotNil(t, tasks[0].Description)
	require.Equal(t, "new details", *tasks[0].Description)
}

func TestSaveEditOperationalFailureKeepsSessionOpen(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "before")

	_, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)

	fx.api.failUpdate = &client.APIError{Op: "update task", Status: 500, Detail: "boom"}
	err = fx.disp.SaveEdit(context.Background(), "after", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to update task")

	// Retry is possible; the prior list is untouched.
	_, ok := fx.disp.Editing()
	require.True(t, ok)
	require.Equal(t, "before", fx.tasks.Tasks()[0].Title)
}

func TestSaveEditUnauthorizedDiscardsSession(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "before")

	_, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)

	fx.api.failUpdate = fmt.Errorf("update task: %w", client.ErrUnauthorized)
	err = fx.disp.SaveEdit(context.Background(), "after", "")
	require.True(t, client.IsUnauthorized(err))

	// The caller is headed to login; in-flight edit state is gone.
	_, ok := fx.disp.Editing()
	require.False(t, ok)
}

func TestCancelEditDiscardsBuffer(t *testing.T) {
	fx := newFixture(t, nil)
	seed(t, fx, "untouched")

	_, err := fx.disp.BeginEdit(1)
	require.NoError(t, err)
	fx.disp.CancelEdit()

	_, ok := fx.disp.Editing()
	require.False(t, ok)
	require.Empty(t, fx.api.calls)
}

func TestRefreshFailureAfterMutationSurfacesError(t *testing.T) {
	fx := newFixture(t, nil)
	fx.api.failList = errors.New("backend down")

	err := fx.disp.Create(context.Background(), "created anyway", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load tasks")
	// The mutation itself went through before the refresh failed.
	require.Equal(t, []string{"create", "list"}, fx.api.calls)
}
