package entity

import (
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

// Media is an uploaded file. It stays unreferenced until a post or profile
// points at its URL.
type Media struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Timestamp   time.Time `json:"timestamp"`
	Deleted     bool      `json:"-"`
}

func MediaFromDocument(doc docstore.Document) Media {
	_, deleted := doc.Data["deletedAt"]
	return Media{
		ID:          doc.ID,
		UserID:      docstore.String(doc.Data, FieldUserID),
		URL:         docstore.String(doc.Data, "url"),
		ContentType: docstore.String(doc.Data, "contentType"),
		Timestamp:   docstore.Time(doc.Data, FieldTimestamp),
		Deleted:     deleted,
	}
}
