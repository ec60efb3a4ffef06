package view

import (
	"fmt"
	"time"

	"taskmesh/internal/model"
)

// UnknownCreatorName labels tasks whose creator profile cannot be
// resolved. Every task displays some attribution.
const UnknownCreatorName = "Unknown Creator"

// EffectiveTaskView is a read-only projection of a task with profiles
// resolved, status derived, and comments sorted. It is recomputed on every
// normalization pass and never persisted.
type EffectiveTaskView struct {
	ID          string
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    model.Priority
	Status      EffectiveStatus
	Creator     model.Profile
	Assignees   []model.Profile
	AssigneeIDs []string
	Comments    []CommentView
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAssignedTo reports membership against the raw identifier set, so it
// holds even for assignees whose profiles could not be resolved.
func (v EffectiveTaskView) IsAssignedTo(userID string) bool {
	for _, id := range v.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Normalize converts a raw store row plus a directory snapshot into its
// effective view. Assignees without a matching profile are omitted from
// Assignees but kept in AssigneeIDs; an unresolvable creator yields a
// placeholder profile. The function performs no I/O.
func Normalize(row model.Task, dir map[string]model.Profile, now time.Time) (EffectiveTaskView, error) {
	if row.ID == "" || row.CreatedByID == "" {
		return EffectiveTaskView{}, fmt.Errorf("task %q missing identity fields: %w", row.ID, model.ErrMalformedRecord)
	}

	assigneeIDs := row.AssigneeIDs()
	assignees := make([]model.Profile, 0, len(assigneeIDs))
	for _, id := range assigneeIDs {
		if profile, ok := dir[id]; ok {
			assignees = append(assignees, profile)
		}
	}

	creator, ok := dir[row.CreatedByID]
	if !ok {
		name := UnknownCreatorName
		creator = model.Profile{ID: row.CreatedByID, DisplayName: &name}
	}

	return EffectiveTaskView{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		DueDate:     row.DueDate,
		Priority:    row.Priority,
		Status:      DeriveStatus(row.Status, row.DueDate, now),
		Creator:     creator,
		Assignees:   assignees,
		AssigneeIDs: assigneeIDs,
		Comments:    SortedComments(row.Comments),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
