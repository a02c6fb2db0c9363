// Package bootstrap opens the infrastructure selected by the configuration
// and prepares it for use.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Marco3041/linkedin-clone/internal/config"
	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/firestore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/memstore"
	"github.com/Marco3041/linkedin-clone/internal/docstore/pgstore"
	seeding "github.com/Marco3041/linkedin-clone/internal/modules/seeding/service"
	"github.com/Marco3041/linkedin-clone/pkg/database"
)

// Infra holds the connections shared by the process.
type Infra struct {
	Store docstore.Store
	// Redis is nil when REDIS_URL is unset.
	Redis *redis.Client
	// Firebase is set when either the store or the auth driver needs it.
	Firebase *firebase.App
}

func Open(ctx context.Context, cfg *config.Config) (*Infra, error) {
	infra := &Infra{}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	infra.Redis = rdb
	if rdb == nil {
		log.Println("⚠️ REDIS_URL not set, running without Redis")
	}

	if cfg.StoreDriver == config.StoreFirestore || cfg.AuthDriver == config.AuthFirebase {
		app, err := firestore.NewApp(ctx, firestore.Options{
			ProjectID:          cfg.FirebaseProjectID,
			CredentialsFile:    cfg.GoogleCredentialsFile,
			ServiceAccountJSON: cfg.FirebaseServiceAccountJSON,
		})
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Firebase = app
	}

	switch cfg.StoreDriver {
	case config.StoreFirestore:
		store, err := firestore.Open(ctx, infra.Firebase, cfg.FirebaseProjectID)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Store = store

	case config.StorePostgres:
		db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			infra.Close()
			return nil, err
		}
		store := pgstore.New(db, rdb, cfg.PGPollInterval)
		if err := store.Migrate(); err != nil {
			store.Close()
			infra.Close()
			return nil, err
		}
		infra.Store = store

	default:
		log.Println("⚠️ Using the in-memory document store, data is lost on restart")
		infra.Store = memstore.New()
	}
	return infra, nil
}

// Seed writes the default groups and jobs into empty collections.
func (i *Infra) Seed(ctx context.Context, strict bool) error {
	if err := seeding.NewSeedingService(i.Store, strict).EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	log.Println("✅ Default groups and jobs ensured")
	return nil
}

func (i *Infra) Close() {
	if i.Store != nil {
		if err := i.Store.Close(); err != nil {
			log.Printf("❌ Error closing document store: %v", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Printf("❌ Error closing redis: %v", err)
		}
	}
}
