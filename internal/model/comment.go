package model

import "time"

// Comment is one entry in a task's append-only log. Once written it is
// never edited or removed. AuthorName is a snapshot captured at post time
// and is not re-resolved against the profile directory later.
type Comment struct {
	ID         uint   `gorm:"primaryKey"`
	TaskID     string `gorm:"index"`
	Seq        int    // per-task insertion order, breaks equal-timestamp ties
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
