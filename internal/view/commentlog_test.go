package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmesh/internal/model"
)

func comment(seq int, text string, at time.Time) model.Comment {
	return model.Comment{Seq: seq, AuthorID: "u1", AuthorName: "User One", Text: text, CreatedAt: at}
}

func TestAppendComment_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := []model.Comment{comment(1, "first", base)}

	out := AppendComment(log, comment(2, "second", base.Add(time.Minute)))

	require.Len(t, out, 2)
	assert.Len(t, log, 1)
	assert.Equal(t, "first", log[0].Text)

	// Appending to the original afterwards must not leak into out.
	_ = AppendComment(log, comment(3, "third", base.Add(2*time.Minute)))
	assert.Equal(t, "second", out[1].Text)
}

func TestSortedComments_MostRecentFirst(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := []model.Comment{
		comment(1, "oldest", base),
		comment(2, "middle", base.Add(time.Minute)),
		comment(3, "newest", base.Add(2*time.Minute)),
	}

	got := SortedComments(log)

	require.Len(t, got, 3)
	assert.Equal(t, "newest", got[0].Text)
	assert.Equal(t, "middle", got[1].Text)
	assert.Equal(t, "oldest", got[2].Text)
}

func TestSortedComments_EqualTimestampsKeepInsertionOrder(t *testing.T) {
	tick := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := []model.Comment{
		comment(1, "posted first", tick),
		comment(2, "posted second", tick),
		comment(3, "posted third", tick),
	}

	got := SortedComments(log)

	require.Len(t, got, 3)
	assert.Equal(t, "posted first", got[0].Text)
	assert.Equal(t, "posted second", got[1].Text)
	assert.Equal(t, "posted third", got[2].Text)
}

func TestSortedComments_AppendIsMonotonic(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := []model.Comment{
		comment(1, "a", base),
		comment(2, "b", base.Add(time.Minute)),
	}

	before := SortedComments(log)
	after := SortedComments(AppendComment(log, comment(3, "c", base.Add(2*time.Minute))))

	require.Len(t, after, len(before)+1)
	texts := make(map[string]bool)
	for _, c := range after {
		texts[c.Text] = true
	}
	for _, c := range before {
		assert.True(t, texts[c.Text], "comment %q lost after append", c.Text)
	}
	assert.True(t, texts["c"])
}

func TestSortedComments_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := []model.Comment{
		comment(1, "newer", base.Add(time.Minute)),
		comment(2, "older", base),
	}

	_ = SortedComments(log)

	assert.Equal(t, "newer", log[0].Text)
	assert.Equal(t, "older", log[1].Text)
}
