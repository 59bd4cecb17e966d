package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Eka2r/Padayon/internal/models"
)

func TestPath(t *testing.T) {
	assert.Equal(t, "artifacts/default-padayon-app/public/data/freedom_wall_posts", Path("default-padayon-app", Posts))
	assert.Equal(t, "artifacts/x/public/data/community_messages", Path("x", Messages))
}

func TestSorted_PostsNonIncreasing(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []models.Post{
		{ID: "a", CreatedAt: base},
		{ID: "missing"},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
	}

	out := Sorted(in, PostsNewestFirst)

	assert.Equal(t, []string{"c", "b", "a", "missing"}, postIDs(out))
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].CreatedAt.After(out[i-1].CreatedAt))
	}
	assert.Equal(t, "a", in[0].ID, "input must not be reordered")
}

func TestSorted_MessagesNonDecreasing(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []models.Message{
		{ID: "late", CreatedAt: base.Add(time.Hour)},
		{ID: "early", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(time.Minute)},
	}

	out := Sorted(in, MessagesOldestFirst)

	ids := make([]string, len(out))
	for i, m := range out {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"early", "mid", "late"}, ids)
}

func TestSorted_TiesKeepDeliveryOrder(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []models.Post{{ID: "x", CreatedAt: ts}, {ID: "y", CreatedAt: ts}, {ID: "z", CreatedAt: ts}}

	assert.Equal(t, []string{"x", "y", "z"}, postIDs(Sorted(in, PostsNewestFirst)))
}

func TestSorted_Nil(t *testing.T) {
	out := Sorted[models.Post](nil, PostsNewestFirst)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestView_ReplaceNotMerge(t *testing.T) {
	var states []State[models.Post]
	v := NewView(PostsNewestFirst, func(s State[models.Post]) { states = append(states, s) })

	v.Apply(Snapshot[models.Post]{Version: 1, Items: []models.Post{{ID: "a"}, {ID: "b"}}})
	v.Apply(Snapshot[models.Post]{Version: 2, Items: []models.Post{{ID: "c"}}})

	assert.Equal(t, []string{"c"}, postIDs(v.State().Items))
	assert.Equal(t, int64(2), v.State().Version)
	assert.Len(t, states, 2)
}

func TestView_FailKeepsList(t *testing.T) {
	v := NewView(PostsNewestFirst, nil)
	v.Apply(Snapshot[models.Post]{Version: 1, Items: []models.Post{{ID: "a"}}})

	v.Fail("could not load")

	st := v.State()
	assert.Equal(t, "could not load", st.Error)
	assert.Equal(t, []string{"a"}, postIDs(st.Items))

	v.Apply(Snapshot[models.Post]{Version: 2, Items: []models.Post{{ID: "b"}}})
	assert.Empty(t, v.State().Error)
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
