package bootstrap

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Marco3041/linkedin-clone/internal/config"
	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	seeding "github.com/Marco3041/linkedin-clone/internal/modules/seeding/service"
)

func TestOpenMemoryAndSeedTwice(t *testing.T) {
	ctx := context.Background()
	infra, err := Open(ctx, &config.Config{StoreDriver: config.StoreMemory, AuthDriver: config.AuthLocal})
	assert.Equal(t, nil, err)
	defer infra.Close()
	assert.Equal(t, true, infra.Redis == nil)
	assert.Equal(t, true, infra.Firebase == nil)

	assert.Equal(t, nil, infra.Seed(ctx, false))
	assert.Equal(t, nil, infra.Seed(ctx, false))

	groups, err := infra.Store.Query(ctx, docstore.Query{Collection: entity.CollectionGroups})
	assert.Equal(t, nil, err)
	assert.Equal(t, len(seeding.DefaultGroups()), len(groups))

	jobs, err := infra.Store.Query(ctx, docstore.Query{Collection: entity.CollectionJobs})
	assert.Equal(t, nil, err)
	assert.Equal(t, len(seeding.DefaultJobs()), len(jobs))
}
