package entity

import (
	"time"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NotificationFromDocument(doc docstore.Document) Notification {
	return Notification{
		ID:        doc.ID,
		UserID:    docstore.String(doc.Data, FieldUserID),
		Message:   docstore.String(doc.Data, "message"),
		Timestamp: docstore.Time(doc.Data, FieldTimestamp),
	}
}

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func MessageFromDocument(doc docstore.Document) Message {
	return Message{
		ID:        doc.ID,
		ChatID:    docstore.String(doc.Data, FieldChatID),
		SenderID:  docstore.String(doc.Data, "senderId"),
		Text:      docstore.String(doc.Data, "text"),
		Timestamp: docstore.Time(doc.Data, FieldTimestamp),
	}
}
