package docstore

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestCompareCrossType(t *testing.T) {
	now := time.Now()
	ordered := []any{nil, false, true, -1, 2.5, int64(3), now, "a", "b", []any{"x"}, map[string]any{}}
	for i := 1; i < len(ordered); i += 1 {
		assert.Equal(t, -1, Compare(ordered[i-1], ordered[i]))
		assert.Equal(t, 1, Compare(ordered[i], ordered[i-1]))
	}
	assert.Equal(t, 0, Compare(3, 3.0))
	assert.Equal(t, 0, Compare([]string{"u1", "u2"}, []any{"u1", "u2"}))
}

func TestSortDocumentsTieBreak(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []Document{
		{ID: "b", Data: map[string]any{"timestamp": ts}},
		{ID: "c", Data: map[string]any{"timestamp": ts.Add(time.Second)}},
		{ID: "a", Data: map[string]any{"timestamp": ts}},
	}

	SortDocuments(docs, "timestamp", Asc)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "c", docs[2].ID)
	assert.Equal(t, true, IsSorted(docs, "timestamp", Asc))

	SortDocuments(docs, "timestamp", Desc)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "a", docs[2].ID)
	assert.Equal(t, true, IsSorted(docs, "timestamp", Desc))
	assert.Equal(t, false, IsSorted(docs, "timestamp", Asc))
}

func TestQueryKeyIgnoresFilterOrder(t *testing.T) {
	a := Query{
		Collection: "messages",
		Filters:    []Filter{Where("chatId", "u1_u2"), Where("senderId", "u1")},
		OrderBy:    "timestamp",
	}
	b := Query{
		Collection: "messages",
		Filters:    []Filter{Where("senderId", "u1"), Where("chatId", "u1_u2")},
		OrderBy:    "timestamp",
	}
	assert.Equal(t, a.Key(), b.Key())

	b.Direction = Desc
	assert.NotEqual(t, a.Key(), b.Key())

	c := a
	c.Limit = 1
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestQueryApply(t *testing.T) {
	docs := []Document{
		{ID: "m1", Data: map[string]any{"chatId": "u1_u2", "timestamp": 2}},
		{ID: "m2", Data: map[string]any{"chatId": "u1_u3", "timestamp": 1}},
		{ID: "m3", Data: map[string]any{"chatId": "u1_u2", "timestamp": 1}},
		{ID: "m4", Data: map[string]any{"chatId": "u1_u2"}},
	}
	q := Query{Collection: "messages", Filters: []Filter{Where("chatId", "u1_u2")}, OrderBy: "timestamp"}

	out := q.Apply(docs)
	assert.Equal(t, 2, len(out))
	assert.Equal(t, "m3", out[0].ID)
	assert.Equal(t, "m1", out[1].ID)

	q.Limit = 1
	assert.Equal(t, 1, len(q.Apply(docs)))
}

func TestPaths(t *testing.T) {
	collection, id, err := Split("posts/p1/comments/c1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "posts/p1/comments", collection)
	assert.Equal(t, "c1", id)

	_, _, err = Split("posts")
	assert.Equal(t, true, errors.Is(err, ErrInvalidPath))
	_, _, err = Split("posts//comments/c1")
	assert.Equal(t, true, errors.Is(err, ErrInvalidPath))

	assert.Equal(t, nil, ValidateCollection(SubCollection(Doc("posts", "p1"), "comments")))
	assert.Equal(t, true, errors.Is(ValidateCollection("posts/p1"), ErrInvalidPath))
}

func TestClockStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &Clock{Now: func() time.Time { return fixed }}

	first := c.Next()
	second := c.Next()
	third := c.Next()
	assert.Equal(t, fixed, first)
	assert.Equal(t, true, second.After(first))
	assert.Equal(t, true, third.After(second))
}

func TestResolveServerTimestamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := map[string]any{
		"text":      "hi",
		"timestamp": ServerTimestamp,
		"meta":      map[string]any{"editedAt": ServerTimestamp},
		"likes":     []any{},
	}
	out := ResolveServerTimestamps(in, at)
	assert.Equal(t, at, out["timestamp"])
	assert.Equal(t, at, out["meta"].(map[string]any)["editedAt"])
	assert.Equal(t, true, IsServerTimestamp(in["timestamp"]))
}

func TestAccessors(t *testing.T) {
	data := map[string]any{
		"name":  "Ada",
		"likes": []any{"u1", "u2", 3},
	}
	assert.Equal(t, "Ada", String(data, "name"))
	assert.Equal(t, "", String(data, "missing"))
	assert.Equal(t, []string{"u1", "u2"}, Strings(data, "likes"))
	assert.Equal(t, true, Contains(data, "likes", "u2"))
	assert.Equal(t, false, Contains(data, "likes", "u9"))

	cloned := Clone(data)
	cloned["likes"].([]any)[0] = "x"
	assert.Equal(t, "u1", data["likes"].([]any)[0])
}
