package entity

import (
	"strings"
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

// Post carries a snapshot of its author taken when it was written; later
// profile edits do not change it.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PhotoURL     string    `json:"photoUrl"`
	Message      string    `json:"message"`
	PostImageURL string    `json:"postImageUrl,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Likes        []string  `json:"likes"`
}

func PostFromDocument(doc docstore.Document) Post {
	return Post{
		ID:           doc.ID,
		AuthorID:     docstore.String(doc.Data, "authorId"),
		Name:         docstore.String(doc.Data, "name"),
		Description:  docstore.String(doc.Data, "description"),
		PhotoURL:     docstore.String(doc.Data, "photoUrl"),
		Message:      docstore.String(doc.Data, "message"),
		PostImageURL: docstore.String(doc.Data, "postImageUrl"),
		Timestamp:    docstore.Time(doc.Data, FieldTimestamp),
		Likes:        docstore.Strings(doc.Data, FieldLikes),
	}
}

// Matches reports whether term occurs in the message, author name or
// description, ignoring case. An empty term matches every post.
func (p Post) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{p.Message, p.Name, p.Description} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserPhoto string    `json:"userPhoto"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func CommentFromDocument(doc docstore.Document) Comment {
	return Comment{
		ID:        doc.ID,
		UserID:    docstore.String(doc.Data, FieldUserID),
		UserName:  docstore.String(doc.Data, "userName"),
		UserPhoto: docstore.String(doc.Data, "userPhoto"),
		Text:      docstore.String(doc.Data, "text"),
		Timestamp: docstore.Time(doc.Data, FieldTimestamp),
	}
}
