package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskmesh/internal/model"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	tests := []struct {
		name   string
		stored model.Status
		due    *time.Time
		want   EffectiveStatus
	}{
		{
			name:   "todo past due is overdue",
			stored: model.StatusToDo,
			due:    &yesterday,
			want:   EffectiveOverdue,
		},
		{
			name:   "in progress past due is overdue",
			stored: model.StatusInProgress,
			due:    &yesterday,
			want:   EffectiveOverdue,
		},
		{
			name:   "done past due stays done",
			stored: model.StatusDone,
			due:    &yesterday,
			want:   EffectiveDone,
		},
		{
			name:   "done without due date stays done",
			stored: model.StatusDone,
			due:    nil,
			want:   EffectiveDone,
		},
		{
			name:   "todo with future due date stays todo",
			stored: model.StatusToDo,
			due:    &nextWeek,
			want:   EffectiveToDo,
		},
		{
			name:   "in progress with future due date stays in progress",
			stored: model.StatusInProgress,
			due:    &nextWeek,
			want:   EffectiveInProgress,
		},
		{
			name:   "todo without due date is never overdue",
			stored: model.StatusToDo,
			due:    nil,
			want:   EffectiveToDo,
		},
		{
			name:   "in progress without due date is never overdue",
			stored: model.StatusInProgress,
			due:    nil,
			want:   EffectiveInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.stored, tt.due, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_DueExactlyNow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now

	// A due date equal to now is not yet past.
	assert.Equal(t, EffectiveToDo, DeriveStatus(model.StatusToDo, &due, now))
}

func TestDeriveStatus_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)

	first := DeriveStatus(model.StatusInProgress, &due, now)
	second := DeriveStatus(model.StatusInProgress, &due, now)
	assert.Equal(t, first, second)
}
