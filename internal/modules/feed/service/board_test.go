package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	feedDto "github.com/Marco3041/linkedin-clone/internal/modules/feed/dto"
)

func postDoc(id string, at time.Time, likes ...any) docstore.Document {
	return docstore.Document{ID: id, Path: "posts/" + id, Data: map[string]any{
		"message":   "post " + id,
		"timestamp": at,
		"likes":     likes,
	}}
}

func commentDoc(id, text string, at time.Time) docstore.Document {
	return docstore.Document{ID: id, Data: map[string]any{"text": text, "timestamp": at}}
}

func TestBoardKeepsCommentsThatArriveBeforeTheirPost(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBoard()
	b.Expand("p2")
	b.SetComments("p2", []docstore.Document{commentDoc("c1", "early", t0)})

	b.SetPosts([]docstore.Document{postDoc("p1", t0)})
	items := b.Render("u1", "")
	assert.Equal(t, 1, len(items))
	assert.Equal(t, 0, len(items[0].Comments))

	b.SetPosts([]docstore.Document{postDoc("p2", t0.Add(time.Second)), postDoc("p1", t0)})
	items = b.Render("u1", "")
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "p2", items[0].ID)
	assert.Equal(t, true, items[0].Expanded)
	assert.Equal(t, 1, len(items[0].Comments))
	assert.Equal(t, "early", items[0].Comments[0].Text)
	assert.Equal(t, feedDto.ThreadLive, items[0].CommentsState)
}

func TestBoardCollapseDropsThread(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBoard()
	b.SetPosts([]docstore.Document{postDoc("p1", t0)})

	b.SetComments("p1", []docstore.Document{commentDoc("c1", "ignored", t0)})
	assert.Equal(t, 0, len(b.Render("u1", "")[0].Comments))

	b.Expand("p1")
	assert.Equal(t, feedDto.ThreadLoading, b.Render("u1", "")[0].CommentsState)
	b.SetComments("p1", []docstore.Document{commentDoc("c1", "shown", t0)})
	assert.Equal(t, 1, len(b.Render("u1", "")[0].Comments))

	b.Collapse("p1")
	item := b.Render("u1", "")[0]
	assert.Equal(t, false, item.Expanded)
	assert.Equal(t, "", item.CommentsState)
	assert.Equal(t, 0, len(item.Comments))

	b.SetComments("p1", []docstore.Document{commentDoc("c2", "late", t0)})
	b.Expand("p1")
	assert.Equal(t, 0, len(b.Render("u1", "")[0].Comments))
}

func TestBoardFailedThreadDropsStaleComments(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBoard()
	b.SetPosts([]docstore.Document{postDoc("p1", t0)})
	b.Expand("p1")
	b.SetComments("p1", []docstore.Document{commentDoc("c1", "before", t0)})

	b.FailComments("p1", errors.New("permission denied"))
	item := b.Render("u1", "")[0]
	assert.Equal(t, true, item.Expanded)
	assert.Equal(t, feedDto.ThreadUnavailable, item.CommentsState)
	assert.Equal(t, "permission denied", item.CommentsError)
	assert.Equal(t, 0, len(item.Comments))

	b.Expand("p1")
	assert.Equal(t, feedDto.ThreadLoading, b.Render("u1", "")[0].CommentsState)
	b.SetComments("p1", []docstore.Document{commentDoc("c1", "before", t0), commentDoc("c2", "after", t0.Add(time.Second))})
	item = b.Render("u1", "")[0]
	assert.Equal(t, feedDto.ThreadLive, item.CommentsState)
	assert.Equal(t, "", item.CommentsError)
	assert.Equal(t, 2, len(item.Comments))

	b.Collapse("p1")
	b.FailComments("p1", errors.New("late"))
	assert.Equal(t, "", b.Render("u1", "")[0].CommentsState)
}

func TestBoardRendersNewestFirstWithLikes(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBoard()
	b.SetPosts([]docstore.Document{
		postDoc("old", t0, "u1"),
		postDoc("new", t0.Add(time.Hour), "u2", "u3"),
	})

	items := b.Render("u1", "")
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, 2, items[0].LikeCount)
	assert.Equal(t, false, items[0].LikedByMe)
	assert.Equal(t, "old", items[1].ID)
	assert.Equal(t, true, items[1].LikedByMe)

	items = b.Render("", "post old")
	assert.Equal(t, 1, len(items))
	assert.Equal(t, false, items[0].LikedByMe)
}
