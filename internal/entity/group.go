package entity

import (
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func GroupFromDocument(doc docstore.Document) Group {
	return Group{
		ID:      doc.ID,
		Name:    docstore.String(doc.Data, "name"),
		Members: docstore.Strings(doc.Data, FieldMembers),
	}
}

type Job struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

func JobFromDocument(doc docstore.Document) Job {
	return Job{
		ID:       doc.ID,
		Title:    docstore.String(doc.Data, "title"),
		Company:  docstore.String(doc.Data, "company"),
		Location: docstore.String(doc.Data, "location"),
	}
}

type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	Timestamp time.Time `json:"timestamp"`
}

func ApplicationFromDocument(doc docstore.Document) Application {
	return Application{
		ID:        doc.ID,
		UserID:    docstore.String(doc.Data, FieldUserID),
		JobID:     docstore.String(doc.Data, "jobId"),
		Timestamp: docstore.Time(doc.Data, FieldTimestamp),
	}
}
