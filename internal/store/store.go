// Package store exposes the task table as a live store: request/response
// writes plus full-snapshot live queries. Every successful write refreshes
// all open subscriptions, so readers converge on the authoritative state
// without the writer splicing anything by hand.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmesh/internal/model"
	"taskmesh/internal/repository"
)

// Store wraps the task repository with snapshot fan-out.
type Store struct {
	tasks *repository.TaskRepository

	mu        sync.Mutex
	subs      map[int]*Subscription
	nextSubID int
}

func New(tasks *repository.TaskRepository) *Store {
	return &Store{
		tasks: tasks,
		subs:  make(map[int]*Subscription),
	}
}

// QueryByCreator opens a live query over tasks created by the given user.
// The initial snapshot, possibly empty, is delivered immediately.
func (st *Store) QueryByCreator(userID string) *Subscription {
	return st.subscribe(func(ctx context.Context) ([]model.Task, error) {
		return st.tasks.ListByCreator(ctx, userID)
	})
}

// QueryByAssignee opens a live query over tasks assigned to the given user.
func (st *Store) QueryByAssignee(userID string) *Subscription {
	return st.subscribe(func(ctx context.Context) ([]model.Task, error) {
		return st.tasks.ListByAssignee(ctx, userID)
	})
}

// GetByID fetches a single row with its assignments and comments.
func (st *Store) GetByID(ctx context.Context, taskID string) (*model.Task, error) {
	task, err := st.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, mapNotFound(err, taskID)
	}
	return task, nil
}

// Insert writes a new task row, assigning its identifier, and refreshes
// all live queries.
func (st *Store) Insert(ctx context.Context, task *model.Task, assigneeIDs []string) (*model.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Assignments = nil
	for _, userID := range assigneeIDs {
		task.Assignments = append(task.Assignments, model.Assignment{TaskID: task.ID, UserID: userID})
	}
	if err := st.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	st.notify(ctx)
	return st.GetByID(ctx, task.ID)
}

// Update applies a partial field update and returns the fresh row.
func (st *Store) Update(ctx context.Context, taskID string, fields map[string]interface{}) (*model.Task, error) {
	if len(fields) > 0 {
		if err := st.tasks.UpdateFields(ctx, taskID, fields); err != nil {
			return nil, mapNotFound(err, taskID)
		}
	}
	st.notify(ctx)
	return st.GetByID(ctx, taskID)
}

// SetAssignees replaces the task's assignee set and returns the fresh row.
func (st *Store) SetAssignees(ctx context.Context, taskID string, userIDs []string) (*model.Task, error) {
	if _, err := st.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	if err := st.tasks.ReplaceAssignees(ctx, taskID, userIDs); err != nil {
		return nil, err
	}
	st.notify(ctx)
	return st.GetByID(ctx, taskID)
}

// AppendComment adds an immutable entry to the task's log and returns the
// fresh row.
func (st *Store) AppendComment(ctx context.Context, comment *model.Comment) (*model.Task, error) {
	if _, err := st.GetByID(ctx, comment.TaskID); err != nil {
		return nil, err
	}
	if err := st.tasks.AppendComment(ctx, comment); err != nil {
		return nil, err
	}
	st.notify(ctx)
	return st.GetByID(ctx, comment.TaskID)
}

// Delete removes the task row and refreshes all live queries.
func (st *Store) Delete(ctx context.Context, taskID string) error {
	if err := st.tasks.Delete(ctx, taskID); err != nil {
		return mapNotFound(err, taskID)
	}
	st.notify(ctx)
	return nil
}

func (st *Store) subscribe(query func(ctx context.Context) ([]model.Task, error)) *Subscription {
	st.mu.Lock()
	id := st.nextSubID
	st.nextSubID++
	sub := &Subscription{
		id:    id,
		ch:    make(chan Snapshot, 1),
		query: query,
		store: st,
	}
	st.subs[id] = sub
	st.mu.Unlock()

	sub.refresh(context.Background())
	return sub
}

// notify re-runs every open live query and pushes fresh snapshots.
func (st *Store) notify(ctx context.Context) {
	st.mu.Lock()
	subs := make([]*Subscription, 0, len(st.subs))
	for _, sub := range st.subs {
		subs = append(subs, sub)
	}
	st.mu.Unlock()

	for _, sub := range subs {
		sub.refresh(ctx)
	}
}

func (st *Store) unsubscribe(id int) {
	st.mu.Lock()
	delete(st.subs, id)
	st.mu.Unlock()
}

func mapNotFound(err error, taskID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}
	return err
}
