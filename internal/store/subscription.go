package store

import (
	"context"
	"fmt"
	"sync"

	"taskmesh/internal/model"
)

// Snapshot is one full result set delivered by a live query. It replaces
// any previous result set for that query. Err is set when the refresh
// failed; Rows then carries nothing and the previous snapshot stays the
// last known good state.
type Snapshot struct {
	Rows []model.Task
	Err  error
}

// Subscription is one open live query. Snapshots arrive on Updates with
// latest-wins buffering: a slow reader only ever skips intermediate
// snapshots, never the most recent one.
type Subscription struct {
	id    int
	ch    chan Snapshot
	query func(ctx context.Context) ([]model.Task, error)
	store *Store
	mu    sync.Mutex
}

// Updates returns the snapshot stream. The channel is never closed; after
// Cancel no further snapshots are delivered.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Cancel deregisters the subscription from the store.
func (s *Subscription) Cancel() {
	s.store.unsubscribe(s.id)
}

// refresh re-runs the query and publishes the result. Query and push form
// one critical section per subscription: concurrent writers refresh in
// some serial order, each querying after its own commit, so the snapshot
// left buffered always reflects the latest committed write.
func (s *Subscription) refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.query(ctx)
	if err != nil {
		s.push(Snapshot{Err: fmt.Errorf("live query refresh: %w", err)})
		return
	}
	s.push(Snapshot{Rows: rows})
}

// push delivers a snapshot without blocking, dropping a stale buffered
// snapshot when the reader has fallen behind.
func (s *Subscription) push(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
