// Package view computes derived, read-only projections of stored tasks.
// Everything here is pure: the caller injects the clock and pre-fetched
// directory snapshots, so the same inputs always yield the same view.
package view

import (
	"time"

	"taskmesh/internal/model"
)

// EffectiveStatus is the status presented to users. Unlike model.Status it
// includes Overdue, which is computed at read time and never persisted.
type EffectiveStatus string

const (
	EffectiveToDo       EffectiveStatus = "todo"
	EffectiveInProgress EffectiveStatus = "in_progress"
	EffectiveDone       EffectiveStatus = "done"
	EffectiveOverdue    EffectiveStatus = "overdue"
)

// DeriveStatus computes the effective status from the stored status, the
// due date and an injected clock. Done always wins; a task without a due
// date is never overdue.
func DeriveStatus(stored model.Status, due *time.Time, now time.Time) EffectiveStatus {
	if stored == model.StatusDone {
		return EffectiveDone
	}
	if due != nil && due.Before(now) {
		return EffectiveOverdue
	}
	if stored == model.StatusInProgress {
		return EffectiveInProgress
	}
	return EffectiveToDo
}
