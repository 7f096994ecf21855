// Package store caches server-owned collections. Every refresh replaces the
// whole snapshot with the server's current truth; there is no incremental
// merge and no reconciliation of concurrent edits.
package store

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/client"
)

var refreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "taskdeck_client",
		Name:      "store_refreshes_total",
		Help:      "Wholesale store refreshes by outcome.",
	},
	[]string{"outcome"},
)

// TaskLister is the slice of the SDK the task store needs.
type TaskLister interface {
	ListTasks(ctx context.Context) ([]client.Task, error)
}

// TaskStore holds the last successfully fetched task collection, in server
// order. A failed refresh keeps the previous snapshot visible instead of
// flashing an empty list on a transient failure.
type TaskStore struct {
	mu     sync.Mutex
	api    TaskLister
	tasks  []client.Task
	loaded bool
}

// NewTaskStore returns an empty store backed by api.
func NewTaskStore(api TaskLister) *TaskStore {
	return &TaskStore{api: api}
}

// Refresh replaces the cached collection with the server's. On error the
// prior snapshot is untouched and the error is returned for the caller's
// error surface to classify.
func (s *TaskStore) Refresh(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		refreshesTotal.WithLabelValues("error").Inc()
		log.Debug().Err(err).Msg("task refresh failed, keeping previous snapshot")
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.loaded = true
	s.mu.Unlock()
	refreshesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Tasks returns a copy of the last successful fetch, in server order.
func (s *TaskStore) Tasks() []client.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]client.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the cached record with the given id.
func (s *TaskStore) Get(id int64) (client.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return client.Task{}, false
}

// Len reports the size of the cached collection.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Loaded reports whether at least one refresh has succeeded; the initial
// fetch shows a loading indicator until this flips.
func (s *TaskStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}
