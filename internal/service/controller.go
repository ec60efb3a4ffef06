package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"taskmesh/internal/directory"
	"taskmesh/internal/model"
	"taskmesh/internal/store"
	"taskmesh/internal/view"
)

// State tracks the controller lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateSubscribing State = "subscribing"
	StateReady       State = "ready"
	StateError       State = "error"
	StateStopped     State = "stopped"
)

const defaultDebounce = 50 * time.Millisecond

// Controller owns one user's live task view. It subscribes to the two
// query streams, coalesces bursts of store events into single recompute
// passes, and exposes the reconciled collection plus the mutation entry
// points. Construct one per logged-in identity and Stop it on identity
// change; there is no ambient session state.
type Controller struct {
	userID    string
	store     *store.Store
	directory *directory.Client
	debounce  time.Duration

	mu        sync.Mutex
	merge     *MergeEngine
	views     []view.EffectiveTaskView
	lastDir   map[string]model.Profile
	state     State
	lastErr   error
	consumers []chan struct{}

	createdSub  *store.Subscription
	assignedSub *store.Subscription
	refreshCh   chan struct{}
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewController(userID string, st *store.Store, dir *directory.Client, debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Controller{
		userID:    userID,
		store:     st,
		directory: dir,
		debounce:  debounce,
		merge:     NewMergeEngine(),
		state:     StateIdle,
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start issues both live queries and begins serving recomputation passes.
// The controller reports loading until both queries have delivered their
// first snapshot.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return fmt.Errorf("controller is %s, not idle", c.state)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.createdSub = c.store.QueryByCreator(c.userID)
	c.assignedSub = c.store.QueryByAssignee(c.userID)
	c.state = StateSubscribing
	go c.run(runCtx)
	return nil
}

// Stop cancels both subscriptions and discards any in-flight recompute.
// It is safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	prev := c.state
	c.state = StateStopped
	cancel, created, assigned := c.cancel, c.createdSub, c.assignedSub
	c.mu.Unlock()
	if prev == StateIdle || prev == StateStopped {
		return
	}

	cancel()
	created.Cancel()
	assigned.Cancel()
	<-c.done
}

// Refresh requests a recomputation pass with a fresh clock, so derived
// statuses flip without waiting for a store event.
func (c *Controller) Refresh() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

// CurrentView returns the reconciled collection, newest update first.
func (c *Controller) CurrentView() []view.EffectiveTaskView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]view.EffectiveTaskView, len(c.views))
	copy(out, c.views)
	return out
}

// IsLoading reports whether the first full snapshot pair is still pending.
// An empty collection with IsLoading false genuinely means "no tasks".
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateSubscribing
}

// LastError returns the most recent transport failure, or nil. A non-nil
// error with a non-empty view means the view is stale, not gone.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives a signal whenever the view
// changes. The channel is buffered; a slow consumer coalesces signals.
func (c *Controller) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.consumers = append(c.consumers, ch)
	c.mu.Unlock()
	return ch
}

// run serializes all recomputation. Events arriving within the debounce
// window collapse into one trailing pass; because passes run on this
// goroutine only, a pass for snapshot N can never land after one for N+1.
func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false
	arm := func() {
		if armed {
			return
		}
		timer.Reset(c.debounce)
		armed = true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-c.createdSub.Updates():
			if snap.Err != nil {
				c.setTransportError(snap.Err)
				continue
			}
			c.mu.Lock()
			c.merge.OnCreatedChange(snap.Rows)
			c.mu.Unlock()
			arm()
		case snap := <-c.assignedSub.Updates():
			if snap.Err != nil {
				c.setTransportError(snap.Err)
				continue
			}
			c.mu.Lock()
			c.merge.OnAssignedChange(snap.Rows)
			c.mu.Unlock()
			arm()
		case <-c.refreshCh:
			arm()
		case <-timer.C:
			armed = false
			c.recompute(ctx)
		}
	}
}

// recompute runs one normalization pass: one directory snapshot, one
// clock reading, every merged row. Malformed rows are skipped and logged,
// never fatal for the pass.
func (c *Controller) recompute(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateStopped || !c.merge.Ready() {
		c.mu.Unlock()
		return
	}
	rows := c.merge.Merged()
	c.mu.Unlock()

	dir, dirErr := c.directory.FetchAll(ctx)
	now := time.Now()

	views := make([]view.EffectiveTaskView, 0, len(rows))
	for _, row := range rows {
		v, err := view.Normalize(row, dir, now)
		if err != nil {
			log.Printf("taskmesh: skipping row %q: %v", row.ID, err)
			continue
		}
		views = append(views, v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped || ctx.Err() != nil {
		return
	}
	if dirErr != nil {
		// Keep the last known good view rather than flashing an empty
		// list on a transient blip.
		c.lastErr = dirErr
		if c.state == StateReady {
			c.state = StateError
		}
		c.notifyConsumersLocked()
		return
	}
	c.views = views
	c.lastDir = dir
	c.lastErr = nil
	c.state = StateReady
	c.notifyConsumersLocked()
}

func (c *Controller) setTransportError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped {
		return
	}
	c.lastErr = err
	if c.state == StateReady {
		c.state = StateError
	}
	c.notifyConsumersLocked()
}

func (c *Controller) notifyConsumersLocked() {
	for _, ch := range c.consumers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    model.Priority
	Status      model.Status
	AssigneeIDs []string
}

// Patch holds optional field changes for Update. Nil fields are left
// untouched; AssigneeIDs nil leaves the set unchanged while an empty
// slice clears it.
type Patch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *model.Priority
	Status       *model.Status
	AssigneeIDs  []string
}

// touchesCoreFields reports whether the patch changes anything beyond
// status; core fields are reserved to the task's creator.
func (p Patch) touchesCoreFields() bool {
	return p.Title != nil || p.Description != nil || p.DueDate != nil ||
		p.ClearDueDate || p.Priority != nil || p.AssigneeIDs != nil
}

// Create writes a new task with the controller's user as creator. The
// result is applied optimistically; the next snapshot is authoritative.
func (c *Controller) Create(ctx context.Context, input CreateInput) (*model.Task, error) {
	if err := c.guardRunning(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	status := input.Status
	if status == "" {
		status = model.StatusToDo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	task := &model.Task{
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    priority,
		Status:      status,
		CreatedByID: c.userID,
	}
	created, err := c.store.Insert(ctx, task, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	c.applyOptimistic(created)
	return created, nil
}

// Update applies a partial change, optionally appending a comment in the
// same call. Authorization is checked before any write: core fields need
// the creator, status and comments need the creator or an assignee.
func (c *Controller) Update(ctx context.Context, taskID string, patch Patch, comment *string) (*model.Task, error) {
	if err := c.guardRunning(); err != nil {
		return nil, err
	}
	existing, err := c.store.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	isCreator := existing.CreatedByID == c.userID
	isAssignee := existing.IsAssignee(c.userID)
	if patch.touchesCoreFields() && !isCreator {
		return nil, fmt.Errorf("user %s may not alter core fields of task %s: %w", c.userID, taskID, model.ErrAuthorizationDenied)
	}
	if (patch.Status != nil || comment != nil) && !isCreator && !isAssignee {
		return nil, fmt.Errorf("user %s is neither creator nor assignee of task %s: %w", c.userID, taskID, model.ErrAuthorizationDenied)
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	switch {
	case patch.ClearDueDate:
		fields["due_date"] = nil
	case patch.DueDate != nil:
		fields["due_date"] = *patch.DueDate
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority %q", *patch.Priority)
		}
		fields["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("invalid status %q", *patch.Status)
		}
		fields["status"] = *patch.Status
	}

	updated := existing
	if len(fields) > 0 {
		updated, err = c.store.Update(ctx, taskID, fields)
		if err != nil {
			return nil, err
		}
	}
	if patch.AssigneeIDs != nil {
		updated, err = c.store.SetAssignees(ctx, taskID, patch.AssigneeIDs)
		if err != nil {
			return nil, err
		}
	}
	if comment != nil {
		updated, err = c.appendComment(ctx, taskID, *comment)
		if err != nil {
			return nil, err
		}
	}

	c.applyOptimistic(updated)
	return updated, nil
}

// Comment appends one immutable entry to the task's log.
func (c *Controller) Comment(ctx context.Context, taskID, text string) (*model.Task, error) {
	if err := c.guardRunning(); err != nil {
		return nil, err
	}
	existing, err := c.store.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedByID != c.userID && !existing.IsAssignee(c.userID) {
		return nil, fmt.Errorf("user %s is neither creator nor assignee of task %s: %w", c.userID, taskID, model.ErrAuthorizationDenied)
	}

	updated, err := c.appendComment(ctx, taskID, text)
	if err != nil {
		return nil, err
	}
	c.applyOptimistic(updated)
	return updated, nil
}

// Delete removes a task. Only the creator may delete; the check runs
// before any write is issued.
func (c *Controller) Delete(ctx context.Context, taskID string) error {
	if err := c.guardRunning(); err != nil {
		return err
	}
	existing, err := c.store.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if existing.CreatedByID != c.userID {
		return fmt.Errorf("user %s is not the creator of task %s: %w", c.userID, taskID, model.ErrAuthorizationDenied)
	}

	if err := c.store.Delete(ctx, taskID); err != nil {
		return err
	}
	c.removeOptimistic(taskID)
	return nil
}

func (c *Controller) guardRunning() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped {
		return model.ErrStopped
	}
	return nil
}

func (c *Controller) appendComment(ctx context.Context, taskID, text string) (*model.Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	comment := &model.Comment{
		TaskID:     taskID,
		AuthorID:   c.userID,
		AuthorName: c.displayName(ctx, c.userID),
		Text:       trimmed,
	}
	return c.store.AppendComment(ctx, comment)
}

// displayName resolves the author name snapshot for a new comment from
// the cached directory snapshot, falling back to a direct lookup and
// finally to the raw identifier.
func (c *Controller) displayName(ctx context.Context, userID string) string {
	c.mu.Lock()
	profile, ok := c.lastDir[userID]
	c.mu.Unlock()
	if ok {
		return profile.Name()
	}
	if p, found := c.directory.FetchOne(ctx, userID); found {
		return p.Name()
	}
	return userID
}

// applyOptimistic splices a mutation result into the current view. The
// next subscription snapshot overwrites it wholesale, never merges.
func (c *Controller) applyOptimistic(task *model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped {
		return
	}
	v, err := view.Normalize(*task, c.lastDir, time.Now())
	if err != nil {
		return
	}
	replaced := false
	for i := range c.views {
		if c.views[i].ID == v.ID {
			c.views[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		c.views = append(c.views, v)
	}
	sort.SliceStable(c.views, func(i, j int) bool {
		return c.views[i].UpdatedAt.After(c.views[j].UpdatedAt)
	})
	c.notifyConsumersLocked()
}

func (c *Controller) removeOptimistic(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped {
		return
	}
	filtered := c.views[:0]
	for _, v := range c.views {
		if v.ID != taskID {
			filtered = append(filtered, v)
		}
	}
	c.views = filtered
	c.notifyConsumersLocked()
}
