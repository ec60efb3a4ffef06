package view

import (
	"sort"
	"time"

	"taskmesh/internal/model"
)

// CommentView is an immutable rendering of one log entry.
type CommentView struct {
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// AppendComment returns a new log with c appended. The input slice is
// never modified.
func AppendComment(log []model.Comment, c model.Comment) []model.Comment {
	out := make([]model.Comment, len(log), len(log)+1)
	copy(out, log)
	return append(out, c)
}

// SortedComments orders the log most recent first. Comments posted within
// the same clock tick keep their insertion order (Seq), so the ordering
// stays stable under timestamp collisions.
func SortedComments(log []model.Comment) []CommentView {
	sorted := make([]model.Comment, len(log))
	copy(sorted, log)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].Seq < sorted[j].Seq
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	views := make([]CommentView, 0, len(sorted))
	for _, c := range sorted {
		views = append(views, CommentView{
			AuthorID:   c.AuthorID,
			AuthorName: c.AuthorName,
			Text:       c.Text,
			CreatedAt:  c.CreatedAt,
		})
	}
	return views
}
