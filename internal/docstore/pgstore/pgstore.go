// Package pgstore keeps documents as jsonb rows in PostgreSQL through GORM.
// Writes are announced on Redis so that subscribers in every process
// re-run their queries; without Redis, subscribers poll.
//
// Server timestamps come from the database: each collection has a clock row
// that every write advances inside its own transaction, so timestamps grow
// strictly per collection no matter which process writes.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type document struct {
	Collection string            `gorm:"primaryKey;type:text"`
	ID         string            `gorm:"primaryKey;type:text"`
	Data       datatypes.JSONMap `gorm:"type:jsonb;not null;index:idx_documents_data,type:gin"`
	UpdatedAt  time.Time
}

func (document) TableName() string {
	return "documents"
}

// collectionClock holds the last timestamp handed out for a collection.
type collectionClock struct {
	Collection string    `gorm:"primaryKey;type:text"`
	Last       time.Time `gorm:"type:timestamptz;not null"`
}

func (collectionClock) TableName() string {
	return "collection_clocks"
}

type Store struct {
	db           *gorm.DB
	feed         *changeFeed
	pollInterval time.Duration
}

func New(db *gorm.DB, rdb *redis.Client, pollInterval time.Duration) *Store {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Store{
		db:           db,
		feed:         newChangeFeed(rdb),
		pollInterval: pollInterval,
	}
}

// Migrate creates the documents and clock tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&document{}, &collectionClock{}); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	log.Println("✅ Document table migrated")
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate document id: %w", err)
	}

	err = s.write(ctx, collection, id.String(), data, func(tx *gorm.DB, row *document) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Store) Create(ctx context.Context, path string, data map[string]any) error {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, id, data, func(tx *gorm.DB, row *document) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", docstore.ErrAlreadyExists, path)
		}
		return nil
	})
}

// SetMerge merges top-level fields with jsonb concatenation.
func (s *Store) SetMerge(ctx context.Context, path string, data map[string]any) error {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, id, data, func(tx *gorm.DB, row *document) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"data":       gorm.Expr("documents.data || EXCLUDED.data"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).Create(row).Error
	})
}

// write resolves server timestamps against the collection clock and runs
// op in the same transaction, so commit order follows timestamp order.
func (s *Store) write(ctx context.Context, collection, id string, data map[string]any, op func(tx *gorm.DB, row *document) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		at, err := tick(tx, collection)
		if err != nil {
			return err
		}
		return op(tx, &document{
			Collection: collection,
			ID:         id,
			Data:       encode(docstore.ResolveServerTimestamps(data, at)),
			UpdatedAt:  at,
		})
	})
	if err != nil {
		return mapError(err)
	}
	s.feed.publish(ctx, collection)
	return nil
}

// tick advances the clock of collection to the database time, or one
// microsecond past its last value when that is later. The row stays locked
// until tx ends.
func tick(tx *gorm.DB, collection string) (time.Time, error) {
	var clock collectionClock
	err := tx.Raw(`INSERT INTO collection_clocks (collection, last) VALUES (?, clock_timestamp())
		ON CONFLICT (collection) DO UPDATE
		SET last = GREATEST(collection_clocks.last + interval '1 microsecond', clock_timestamp())
		RETURNING collection, last`, collection).Scan(&clock).Error
	if err != nil {
		return time.Time{}, err
	}
	return clock.Last.UTC(), nil
}

func (s *Store) AddToSet(ctx context.Context, path, field string, value any) error {
	elem, err := jsonText(value)
	if err != nil {
		return err
	}
	expr := gorm.Expr(
		`jsonb_set(data, ARRAY[?]::text[], CASE
			WHEN COALESCE(data->?::text, '[]'::jsonb) @> jsonb_build_array(?::jsonb) THEN COALESCE(data->?::text, '[]'::jsonb)
			ELSE COALESCE(data->?::text, '[]'::jsonb) || jsonb_build_array(?::jsonb)
		END)`,
		field, field, elem, field, field, elem,
	)
	return s.updateSet(ctx, path, expr)
}

func (s *Store) RemoveFromSet(ctx context.Context, path, field string, value any) error {
	elem, err := jsonText(value)
	if err != nil {
		return err
	}
	expr := gorm.Expr(
		`jsonb_set(data, ARRAY[?]::text[], COALESCE(
			(SELECT jsonb_agg(e) FROM jsonb_array_elements(COALESCE(data->?::text, '[]'::jsonb)) AS e WHERE e <> ?::jsonb),
			'[]'::jsonb))`,
		field, field, elem,
	)
	return s.updateSet(ctx, path, expr)
}

func (s *Store) updateSet(ctx context.Context, path string, expr clause.Expr) error {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&document{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]any{"data": expr, "updated_at": gorm.Expr("clock_timestamp()")})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	s.feed.publish(ctx, collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&document{})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected > 0 {
		s.feed.publish(ctx, collection)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	collection, id, err := docstore.Split(path)
	if err != nil {
		return nil, err
	}

	var row document
	if err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
		}
		return nil, mapError(err)
	}
	doc := toDocument(row)
	return &doc, nil
}

// Query filters by collection and equality in SQL, then orders and limits
// with the shared comparator so every driver agrees on ordering.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Where("collection = ?", q.Collection)
	for _, f := range q.Filters {
		value, err := jsonText(f.Value)
		if err != nil {
			return nil, err
		}
		tx = tx.Where("data -> ?::text = ?::jsonb", f.Field, value)
	}

	var rows []document
	if err := tx.Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return q.Apply(docs), nil
}

func (s *Store) Close() error {
	s.feed.close()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDocument(row document) docstore.Document {
	return docstore.Document{
		ID:   row.ID,
		Path: docstore.Doc(row.Collection, row.ID),
		Data: decode(row.Data),
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, docstore.ErrAlreadyExists) || errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", docstore.ErrAlreadyExists, err)
	}
	return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
}
