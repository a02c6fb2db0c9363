package seeding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
)

// SeedingService fills a collection with default records the first time it
// is found empty. In the default mode two processes seeding an empty
// collection at the same moment may both insert; strict mode writes the
// defaults at fixed ids so they converge on one copy.
type SeedingService interface {
	// EnsureSeeded returns how many defaults it wrote.
	EnsureSeeded(ctx context.Context, collection string, defaults []map[string]any) (int, error)
	EnsureDefaults(ctx context.Context) error
}

type seedingService struct {
	store  docstore.Store
	strict bool
}

func NewSeedingService(store docstore.Store, strict bool) SeedingService {
	return &seedingService{store: store, strict: strict}
}

func (s *seedingService) EnsureSeeded(ctx context.Context, collection string, defaults []map[string]any) (int, error) {
	existing, err := s.store.Query(ctx, docstore.Query{Collection: collection, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("check %s: %w", collection, err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	written := 0
	for i, data := range defaults {
		if s.strict {
			err = s.store.Create(ctx, docstore.Doc(collection, DefaultID(collection, i)), data)
			if errors.Is(err, docstore.ErrAlreadyExists) {
				continue
			}
		} else {
			_, err = s.store.Insert(ctx, collection, data)
		}
		if err != nil {
			return written, fmt.Errorf("seed %s: %w", collection, err)
		}
		written++
	}

	if written > 0 {
		log.Printf("🌱 Seeded %d default records into %s", written, collection)
	}
	return written, nil
}

func (s *seedingService) EnsureDefaults(ctx context.Context) error {
	if _, err := s.EnsureSeeded(ctx, entity.CollectionGroups, DefaultGroups()); err != nil {
		return err
	}
	if _, err := s.EnsureSeeded(ctx, entity.CollectionJobs, DefaultJobs()); err != nil {
		return err
	}
	return nil
}

// DefaultID is the fixed id of the n-th default record in strict mode.
func DefaultID(collection string, n int) string {
	leaf := collection[strings.LastIndex(collection, "/")+1:]
	return fmt.Sprintf("%s-default-%d", leaf, n+1)
}

func DefaultGroups() []map[string]any {
	names := []string{"React Developers", "Frontend Engineers", "UI/UX Designers"}
	groups := make([]map[string]any, 0, len(names))
	for _, name := range names {
		groups = append(groups, map[string]any{
			"name":              name,
			entity.FieldMembers: []any{},
		})
	}
	return groups
}

func DefaultJobs() []map[string]any {
	return []map[string]any{
		{"title": "Frontend Developer", "company": "Google", "location": "Mountain View, CA"},
		{"title": "React Engineer", "company": "Meta", "location": "Menlo Park, CA"},
		{"title": "Software Engineer II", "company": "Amazon", "location": "Seattle, WA"},
		{"title": "Full Stack Developer", "company": "Netflix", "location": "Los Gatos, CA"},
	}
}
