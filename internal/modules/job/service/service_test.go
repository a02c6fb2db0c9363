package job

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	notifRepo "github.com/Marco3041/linkedin-clone/internal/modules/notification/repository"
	notifService "github.com/Marco3041/linkedin-clone/internal/modules/notification/service"
)

func setup(t *testing.T) (*memstore.Store, JobService) {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })

	err := store.SetMerge(context.Background(), entity.JobPath("j1"), map[string]any{
		"title":    "Welder",
		"company":  "Acme",
		"location": "Springfield",
	})
	assert.Equal(t, nil, err)

	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(store))
	return store, NewJobService(store, notifications)
}

func query(t *testing.T, store docstore.Store, collection string) []docstore.Document {
	t.Helper()
	docs, err := store.Query(context.Background(), docstore.Query{Collection: collection})
	assert.Equal(t, nil, err)
	return docs
}

func TestApplyWritesApplicationAndNotification(t *testing.T) {
	store, svc := setup(t)

	_, err := svc.ApplyToJob(context.Background(), "u1", "j1")
	assert.Equal(t, nil, err)

	apps := query(t, store, entity.CollectionApplications)
	assert.Equal(t, 1, len(apps))
	app := entity.ApplicationFromDocument(apps[0])
	assert.Equal(t, "u1", app.UserID)
	assert.Equal(t, "j1", app.JobID)
	assert.Equal(t, false, app.Timestamp.IsZero())

	notes := query(t, store, entity.CollectionNotifications)
	assert.Equal(t, 1, len(notes))
	note := entity.NotificationFromDocument(notes[0])
	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, true, strings.Contains(note.Message, "Acme"))
	assert.Equal(t, "You successfully applied for the position at Acme", note.Message)
}

func TestApplySucceedsWhenNotificationFails(t *testing.T) {
	store, svc := setup(t)
	store.SetFault(entity.CollectionNotifications, memstore.FaultWrite, docstore.ErrUnavailable)

	_, err := svc.ApplyToJob(context.Background(), "u1", "j1")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(query(t, store, entity.CollectionApplications)))
	assert.Equal(t, 0, store.Writes(entity.CollectionNotifications))
}

func TestApplyFailureSendsNoNotification(t *testing.T) {
	store, svc := setup(t)
	store.SetFault(entity.CollectionApplications, memstore.FaultWrite, docstore.ErrPermissionDenied)

	_, err := svc.ApplyToJob(context.Background(), "u1", "j1")
	assert.Equal(t, true, errors.Is(err, docstore.ErrPermissionDenied))
	assert.Equal(t, 0, store.Writes(entity.CollectionNotifications))
}

func TestApplyUnknownJob(t *testing.T) {
	_, svc := setup(t)
	_, err := svc.ApplyToJob(context.Background(), "u1", "missing")
	assert.Equal(t, true, errors.Is(err, docstore.ErrNotFound))
}
