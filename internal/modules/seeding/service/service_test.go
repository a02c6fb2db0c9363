package seeding

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
)

func count(t *testing.T, store docstore.Store, collection string) int {
	t.Helper()
	docs, err := store.Query(context.Background(), docstore.Query{Collection: collection})
	assert.Equal(t, nil, err)
	return len(docs)
}

func TestSeedsEmptyCollectionOnce(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()
	svc := NewSeedingService(store, false)

	n, err := svc.EnsureSeeded(ctx, entity.CollectionGroups, DefaultGroups())
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, n)

	for i := 0; i < 3; i += 1 {
		n, err = svc.EnsureSeeded(ctx, entity.CollectionGroups, DefaultGroups())
		assert.Equal(t, nil, err)
		assert.Equal(t, 0, n)
	}
	assert.Equal(t, 3, count(t, store, entity.CollectionGroups))
}

func TestNeverSeedsNonEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()

	_, err := store.Insert(ctx, entity.CollectionJobs, map[string]any{"title": "Plumber", "company": "Acme"})
	assert.Equal(t, nil, err)

	for _, strict := range []bool{false, true} {
		n, err := NewSeedingService(store, strict).EnsureSeeded(ctx, entity.CollectionJobs, DefaultJobs())
		assert.Equal(t, nil, err)
		assert.Equal(t, 0, n)
	}
	assert.Equal(t, 1, count(t, store, entity.CollectionJobs))
}

func TestStrictModeConvergesUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := NewSeedingService(store, true).EnsureSeeded(ctx, entity.CollectionJobs, DefaultJobs())
			assert.Equal(t, nil, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, count(t, store, entity.CollectionJobs))

	doc, err := store.Get(ctx, docstore.Doc(entity.CollectionJobs, "jobs-default-1"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "Google", doc.Data["company"])
}

func TestEnsureDefaults(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	defer store.Close()

	assert.Equal(t, nil, NewSeedingService(store, false).EnsureDefaults(ctx))
	assert.Equal(t, 3, count(t, store, entity.CollectionGroups))
	assert.Equal(t, 4, count(t, store, entity.CollectionJobs))
}

func TestDefaultID(t *testing.T) {
	assert.Equal(t, "groups-default-1", DefaultID("groups", 0))
	assert.Equal(t, "comments-default-3", DefaultID("posts/p1/comments", 2))
}
