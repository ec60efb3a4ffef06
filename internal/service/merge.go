package service

import (
	"sort"

	"taskmesh/internal/model"
)

// MergeEngine folds the creator-side and assignee-side live query
// snapshots into one deduplicated collection. It is not goroutine-safe;
// the controller serializes all access to it.
type MergeEngine struct {
	created      []model.Task
	assigned     []model.Task
	createdSeen  bool
	assignedSeen bool
}

func NewMergeEngine() *MergeEngine {
	return &MergeEngine{}
}

// OnCreatedChange replaces the creator-side row set in full.
func (m *MergeEngine) OnCreatedChange(rows []model.Task) {
	m.created = rows
	m.createdSeen = true
}

// OnAssignedChange replaces the assignee-side row set in full.
func (m *MergeEngine) OnAssignedChange(rows []model.Task) {
	m.assigned = rows
	m.assignedSeen = true
}

// Ready reports whether both queries have delivered at least one snapshot.
// Until then the merged collection must be treated as loading, not empty.
func (m *MergeEngine) Ready() bool {
	return m.createdSeen && m.assignedSeen
}

// CreatedRows returns the creator-side bucket as last delivered.
func (m *MergeEngine) CreatedRows() []model.Task {
	return m.created
}

// AssignedRows returns the assignee-side bucket as last delivered.
func (m *MergeEngine) AssignedRows() []model.Task {
	return m.assigned
}

// Merged returns the union of both buckets, deduplicated by task ID with
// the creator-side row taking precedence, newest update first.
func (m *MergeEngine) Merged() []model.Task {
	seen := make(map[string]struct{}, len(m.created)+len(m.assigned))
	merged := make([]model.Task, 0, len(m.created)+len(m.assigned))
	for _, row := range m.created {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		merged = append(merged, row)
	}
	for _, row := range m.assigned {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		merged = append(merged, row)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})
	return merged
}
