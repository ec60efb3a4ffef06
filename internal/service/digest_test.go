package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskmesh/internal/model"
	"taskmesh/internal/view"
)

func namedProfile(id, name string) model.Profile {
	return model.Profile{ID: id, DisplayName: &name}
}

func TestBuildDigest_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	nextMonth := now.Add(30 * 24 * time.Hour)

	views := []view.EffectiveTaskView{
		{ID: "t1", Title: "late report", Status: view.EffectiveOverdue, DueDate: &yesterday, Creator: namedProfile("u", "Uma")},
		{ID: "t2", Title: "urgent review", Status: view.EffectiveInProgress, DueDate: &tomorrow, Creator: namedProfile("v", "Victor")},
		{ID: "t3", Title: "someday cleanup", Status: view.EffectiveToDo, DueDate: &nextMonth, Creator: namedProfile("u", "Uma")},
		{ID: "t4", Title: "finished thing", Status: view.EffectiveDone, Creator: namedProfile("u", "Uma")},
	}

	digest := BuildDigest(views, now)

	assert.Contains(t, digest, "late report")
	assert.Contains(t, digest, "urgent review")
	assert.Contains(t, digest, "someday cleanup")
	assert.NotContains(t, digest, "finished thing", "done tasks are left out")

	// Overdue section comes before the due-soon section.
	assert.Less(t, strings.Index(digest, "late report"), strings.Index(digest, "urgent review"))
	assert.Less(t, strings.Index(digest, "urgent review"), strings.Index(digest, "someday cleanup"))
}

func TestBuildDigest_EmptyView(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	digest := BuildDigest(nil, now)

	assert.Contains(t, digest, "nothing overdue")
	assert.Contains(t, digest, "nothing due within 48 hours")
	assert.Contains(t, digest, "no other open tasks")
}

func TestBuildDigest_EscapesHTML(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	views := []view.EffectiveTaskView{
		{ID: "t1", Title: "<script>alert</script>", Status: view.EffectiveToDo, Creator: namedProfile("u", "Uma")},
	}

	digest := BuildDigest(views, now)

	assert.NotContains(t, digest, "<script>")
	assert.Contains(t, digest, "&lt;script&gt;")
}

func TestBuildDigest_MentionsLatestCommentAuthor(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	views := []view.EffectiveTaskView{
		{
			ID: "t1", Title: "discussed", Status: view.EffectiveToDo,
			Creator: namedProfile("u", "Uma"),
			Comments: []view.CommentView{
				{AuthorID: "v", AuthorName: "Victor", Text: "latest", CreatedAt: now},
				{AuthorID: "u", AuthorName: "Uma", Text: "older", CreatedAt: now.Add(-time.Hour)},
			},
		},
	}

	digest := BuildDigest(views, now)

	assert.Contains(t, digest, "2 comment(s)")
	assert.Contains(t, digest, "last by Victor")
}
