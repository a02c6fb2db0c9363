package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	StoreDriver    string
	DatabaseURL    string
	RedisURL       string
	PGPollInterval time.Duration

	FirebaseProjectID          string
	FirebaseServiceAccountJSON string
	GoogleCredentialsFile      string

	AuthDriver string
	JWTSecret  string
	JWTTTL     time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	SeedStrict    bool
	RateLimitPost time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		StoreDriver: getEnv("STORE_DRIVER", StoreMemory),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		FirebaseProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseServiceAccountJSON: os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"),
		GoogleCredentialsFile:      os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		AuthDriver: getEnv("AUTH_DRIVER", AuthLocal),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "linkedin_clone"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASS"),
			getEnv("DB_NAME", "linkedin_clone"),
			getEnv("DB_PORT", "5432"),
		)
	}

	var err error
	cfg.PGPollInterval, err = parseDuration(getEnv("PG_POLL_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PG_POLL_INTERVAL: %w", err)
	}
	cfg.RateLimitPost, err = parseDuration(getEnv("RATE_LIMIT_POST", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}

	ttl, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "1440"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %q", os.Getenv("JWT_TTL_MINUTES"))
	}
	cfg.JWTTTL = time.Duration(ttl) * time.Minute

	cfg.SeedStrict, err = strconv.ParseBool(getEnv("SEED_STRICT", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_STRICT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres:
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for STORE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthDriver {
	case AuthLocal:
		if c.JWTSecret == "" {
			if c.AppEnv != "development" {
				return fmt.Errorf("JWT_SECRET is required outside development")
			}
			c.JWTSecret = "dev-secret-change-me"
		}
	case AuthFirebase:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for AUTH_DRIVER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_DRIVER %q", c.AuthDriver)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
