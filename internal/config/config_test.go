package config

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_DRIVER", "local")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SEED_STRICT", "true")
	t.Setenv("RATE_LIMIT_POST", "10s")
	t.Setenv("JWT_TTL_MINUTES", "60")

	cfg, err := Load()
	assert.Equal(t, nil, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, true, cfg.SeedStrict)
	assert.Equal(t, 10*time.Second, cfg.RateLimitPost)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.NotEqual(t, "", cfg.JWTSecret)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.NotEqual(t, nil, err)
}

func TestFirestoreNeedsProject(t *testing.T) {
	t.Setenv("STORE_DRIVER", "firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	_, err := Load()
	assert.NotEqual(t, nil, err)
}
