// Package docstoretest holds the behaviour every docstore.Store driver must
// share. Drivers run it from their own tests against a live store.
package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

// Run checks store against the Store contract. Every run writes to
// collections with a fresh prefix, so a shared database can be reused.
func Run(t *testing.T, store docstore.Store) {
	prefix := "t" + uuid.NewString()[:8] + "_"
	collection := func(name string) string { return prefix + name }

	t.Run("InsertAssignsIncreasingTimestamps", func(t *testing.T) {
		ctx := context.Background()
		messages := collection("messages")

		var ids []string
		for _, text := range []string{"a", "b", "c"} {
			id, err := store.Insert(ctx, messages, map[string]any{"text": text, "timestamp": docstore.ServerTimestamp})
			assert.Equal(t, nil, err)
			ids = append(ids, id)
		}

		var last time.Time
		for _, id := range ids {
			doc, err := store.Get(ctx, docstore.Doc(messages, id))
			assert.Equal(t, nil, err)
			at := docstore.Time(doc.Data, "timestamp")
			assert.Equal(t, true, at.After(last))
			last = at
		}
	})

	t.Run("CreateRejectsExisting", func(t *testing.T) {
		ctx := context.Background()
		path := docstore.Doc(collection("groups"), "g1")

		assert.Equal(t, nil, store.Create(ctx, path, map[string]any{"name": "React Developers"}))
		err := store.Create(ctx, path, map[string]any{"name": "other"})
		assert.Equal(t, true, errors.Is(err, docstore.ErrAlreadyExists))

		doc, err := store.Get(ctx, path)
		assert.Equal(t, nil, err)
		assert.Equal(t, "React Developers", doc.Data["name"])
	})

	t.Run("SetMergeKeepsOtherFields", func(t *testing.T) {
		ctx := context.Background()
		path := docstore.Doc(collection("users"), "u1")

		assert.Equal(t, nil, store.SetMerge(ctx, path, map[string]any{"name": "Ada", "connections": []any{"u2"}}))
		assert.Equal(t, nil, store.SetMerge(ctx, path, map[string]any{"bio": "engineer"}))

		doc, err := store.Get(ctx, path)
		assert.Equal(t, nil, err)
		assert.Equal(t, "Ada", doc.Data["name"])
		assert.Equal(t, "engineer", doc.Data["bio"])
		assert.Equal(t, []string{"u2"}, docstore.Strings(doc.Data, "connections"))
	})

	t.Run("SetOperationsAreIdempotent", func(t *testing.T) {
		ctx := context.Background()
		posts := collection("posts")
		path := docstore.Doc(posts, "p1")

		assert.Equal(t, nil, store.SetMerge(ctx, path, map[string]any{"likes": []any{}}))
		assert.Equal(t, nil, store.AddToSet(ctx, path, "likes", "u1"))
		assert.Equal(t, nil, store.AddToSet(ctx, path, "likes", "u1"))
		assert.Equal(t, nil, store.AddToSet(ctx, path, "likes", "u2"))

		doc, err := store.Get(ctx, path)
		assert.Equal(t, nil, err)
		assert.Equal(t, []string{"u1", "u2"}, docstore.Strings(doc.Data, "likes"))

		assert.Equal(t, nil, store.RemoveFromSet(ctx, path, "likes", "u1"))
		assert.Equal(t, nil, store.RemoveFromSet(ctx, path, "likes", "u1"))
		doc, err = store.Get(ctx, path)
		assert.Equal(t, nil, err)
		assert.Equal(t, []string{"u2"}, docstore.Strings(doc.Data, "likes"))

		err = store.AddToSet(ctx, docstore.Doc(posts, "missing"), "likes", "u1")
		assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("DeleteRemovesDocument", func(t *testing.T) {
		ctx := context.Background()
		path := docstore.Doc(collection("credentials"), "ada@example.com")

		assert.Equal(t, nil, store.Create(ctx, path, map[string]any{"uid": "u1"}))
		assert.Equal(t, nil, store.Delete(ctx, path))
		_, err := store.Get(ctx, path)
		assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))

		assert.Equal(t, nil, store.Delete(ctx, path))
		assert.Equal(t, nil, store.Create(ctx, path, map[string]any{"uid": "u2"}))
	})

	t.Run("QueryFiltersAndOrders", func(t *testing.T) {
		ctx := context.Background()
		notifications := collection("notifications")

		for _, n := range []struct{ user, message string }{
			{"u1", "first"}, {"u2", "other"}, {"u1", "second"},
		} {
			_, err := store.Insert(ctx, notifications, map[string]any{
				"userId":    n.user,
				"message":   n.message,
				"timestamp": docstore.ServerTimestamp,
			})
			assert.Equal(t, nil, err)
		}
		_, err := store.Insert(ctx, notifications, map[string]any{"userId": "u1", "message": "unordered"})
		assert.Equal(t, nil, err)

		docs, err := store.Query(ctx, docstore.Query{
			Collection: notifications,
			Filters:    []docstore.Filter{docstore.Where("userId", "u1")},
			OrderBy:    "timestamp",
			Direction:  docstore.Desc,
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, 2, len(docs))
		assert.Equal(t, "second", docs[0].Data["message"])
		assert.Equal(t, "first", docs[1].Data["message"])

		docs, err = store.Query(ctx, docstore.Query{
			Collection: notifications,
			Filters:    []docstore.Filter{docstore.Where("userId", "u1")},
			OrderBy:    "timestamp",
			Direction:  docstore.Desc,
			Limit:      1,
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, 1, len(docs))
		assert.Equal(t, "second", docs[0].Data["message"])
	})

	t.Run("SubscribeDeliversSnapshots", func(t *testing.T) {
		ctx := context.Background()
		messages := collection("chat")
		q := docstore.Query{
			Collection: messages,
			Filters:    []docstore.Filter{docstore.Where("chatId", "u1_u2")},
			OrderBy:    "timestamp",
		}
		stream, err := store.Subscribe(ctx, q)
		assert.Equal(t, nil, err)
		defer stream.Stop()

		ev := Next(t, stream)
		assert.Equal(t, nil, ev.Err)
		assert.Equal(t, 0, len(ev.Docs))

		for _, text := range []string{"hi", "there"} {
			_, err = store.Insert(ctx, messages, map[string]any{"chatId": "u1_u2", "text": text, "timestamp": docstore.ServerTimestamp})
			assert.Equal(t, nil, err)
		}
		ev = Until(t, stream, func(ev docstore.Event) bool { return len(ev.Docs) == 2 })
		assert.Equal(t, "hi", ev.Docs[0].Data["text"])
		assert.Equal(t, "there", ev.Docs[1].Data["text"])

		stream.Stop()
		for range stream.Events() {
		}
	})
}

// Next waits for the next event of stream.
func Next(t *testing.T, stream docstore.Stream) docstore.Event {
	t.Helper()
	select {
	case ev, ok := <-stream.Events():
		if !ok {
			t.Fatal("stream closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return docstore.Event{}
}

// Until skips events until match accepts one. Error events fail the test.
func Until(t *testing.T, stream docstore.Stream, match func(docstore.Event) bool) docstore.Event {
	t.Helper()
	for {
		ev := Next(t, stream)
		if ev.Err != nil {
			t.Fatalf("stream failed: %v", ev.Err)
		}
		if match(ev) {
			return ev
		}
	}
}
