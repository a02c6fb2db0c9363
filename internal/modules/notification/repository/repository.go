package repository

import (
	"context"
	"fmt"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, userID, message string) (string, error)
	GetByUserID(ctx context.Context, userID string, limit int) ([]entity.Notification, error)
}

type notificationRepository struct {
	store docstore.Store
}

func NewNotificationRepository(store docstore.Store) NotificationRepository {
	return &notificationRepository{store: store}
}

// ByUserQuery selects the notifications addressed to userID, newest first.
func ByUserQuery(userID string) docstore.Query {
	return docstore.Query{
		Collection: entity.CollectionNotifications,
		Filters:    []docstore.Filter{docstore.Where(entity.FieldUserID, userID)},
		OrderBy:    entity.FieldTimestamp,
		Direction:  docstore.Desc,
	}
}

func (r *notificationRepository) Create(ctx context.Context, userID, message string) (string, error) {
	return r.store.Insert(ctx, entity.CollectionNotifications, map[string]any{
		entity.FieldUserID:    userID,
		"message":             message,
		entity.FieldTimestamp: docstore.ServerTimestamp,
	})
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	q := ByUserQuery(userID)
	q.Limit = limit

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	notifications := make([]entity.Notification, 0, len(docs))
	for _, doc := range docs {
		notifications = append(notifications, entity.NotificationFromDocument(doc))
	}
	return notifications, nil
}
