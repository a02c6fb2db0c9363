// Package firestore backs docstore.Store with Cloud Firestore through the
// Firebase Admin SDK.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type Options struct {
	ProjectID          string
	CredentialsFile    string
	ServiceAccountJSON string
}

type Store struct {
	client *firestore.Client
}

// NewApp initializes the Firebase Admin SDK for the project. The same app
// serves the Firestore driver and ID-token verification.
func NewApp(ctx context.Context, opts Options) (*firebase.App, error) {
	var clientOpts []option.ClientOption
	if opts.ServiceAccountJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(opts.ServiceAccountJSON)))
	} else if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: opts.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	return app, nil
}

// Open connects to the Firestore database of the Firebase project. The
// emulator is picked up from FIRESTORE_EMULATOR_HOST by the SDK.
func Open(ctx context.Context, app *firebase.App, projectID string) (*Store, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", mapError(err))
	}

	log.Printf("✅ Firestore connected (project %s)", projectID)
	return &Store{client: client}, nil
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, encode(data))
	if err != nil {
		return "", mapError(err)
	}
	return ref.ID, nil
}

func (s *Store) Create(ctx context.Context, path string, data map[string]any) error {
	if _, _, err := docstore.Split(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Create(ctx, encode(data))
	return mapError(err)
}

func (s *Store) SetMerge(ctx context.Context, path string, data map[string]any) error {
	if _, _, err := docstore.Split(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Set(ctx, encode(data), firestore.MergeAll)
	return mapError(err)
}

func (s *Store) AddToSet(ctx context.Context, path, field string, value any) error {
	return s.update(ctx, path, field, firestore.ArrayUnion(value))
}

func (s *Store) RemoveFromSet(ctx context.Context, path, field string, value any) error {
	return s.update(ctx, path, field, firestore.ArrayRemove(value))
}

func (s *Store) update(ctx context.Context, path, field string, transform any) error {
	if _, _, err := docstore.Split(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Update(ctx, []firestore.Update{{Path: field, Value: transform}})
	return mapError(err)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if _, _, err := docstore.Split(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Delete(ctx)
	return mapError(err)
}

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	collection, _, err := docstore.Split(path)
	if err != nil {
		return nil, err
	}
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	doc := toDocument(collection, snap)
	return &doc, nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}
	snaps, err := s.build(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	return toDocuments(q.Collection, snaps), nil
}

func (s *Store) build(q docstore.Query) firestore.Query {
	query := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == docstore.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func (s *Store) Close() error {
	return s.client.Close()
}

func toDocument(collection string, snap *firestore.DocumentSnapshot) docstore.Document {
	return docstore.Document{
		ID:   snap.Ref.ID,
		Path: docstore.Doc(collection, snap.Ref.ID),
		Data: snap.Data(),
	}
}

func toDocuments(collection string, snaps []*firestore.DocumentSnapshot) []docstore.Document {
	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(collection, snap))
	}
	return docs
}

// encode swaps the ServerTimestamp placeholder for Firestore's sentinel.
func encode(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case map[string]any:
			out[k] = encode(t)
		default:
			if docstore.IsServerTimestamp(v) {
				out[k] = firestore.ServerTimestamp
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", docstore.ErrAlreadyExists, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", docstore.ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	case codes.Canceled:
		return context.Canceled
	}
	return err
}
