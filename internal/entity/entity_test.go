package entity

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "posts/p1/comments", CommentsPath("p1"))
	assert.Equal(t, "users/u1", UserPath("u1"))
	assert.Equal(t, nil, docstore.ValidateCollection(CommentsPath("p1")))
}

func TestPostFromDocumentToleratesMissingFields(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := PostFromDocument(docstore.Document{ID: "p1", Data: map[string]any{
		"message":   "hi",
		"timestamp": at,
		"likes":     []any{"u1", "u2"},
	}})
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "hi", p.Message)
	assert.Equal(t, "", p.PostImageURL)
	assert.Equal(t, at, p.Timestamp)
	assert.Equal(t, []string{"u1", "u2"}, p.Likes)
}

func TestPostMatches(t *testing.T) {
	p := Post{Message: "Shipping the new Release", Name: "Ada Lovelace", Description: "ada@example.com"}

	assert.Equal(t, true, p.Matches(""))
	assert.Equal(t, true, p.Matches("release"))
	assert.Equal(t, true, p.Matches("LOVELACE"))
	assert.Equal(t, true, p.Matches("example.com"))
	assert.Equal(t, false, p.Matches("babbage"))
}
