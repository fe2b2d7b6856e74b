package global

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port          string
	Env           string
	Storage       string
	MongoURI      string
	MongoDatabase string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CartLockTTL   time.Duration
	CORSOrigins   []string
	LogLevel      string
	BcryptCost    int

	OpenAIEndpoint   string
	OpenAIKey        string
	OpenAIDeployment string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads the process environment. Call godotenv.Load first if a
// .env file should be honoured.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          GetEnvOrDefault("PORT", "3002"),
		Env:           GetEnvOrDefault("ENV", "development"),
		Storage:       GetEnvOrDefault("STORAGE", StorageMongo),
		MongoURI:      GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase: GetEnvOrDefault("MONGODB_DATABASE", "myudb"),
		RedisAddress:  GetEnvOrDefault("REDIS_ADDRESS", ""),
		RedisPassword: GetEnvOrDefault("REDIS_PASSWORD", ""),
		CORSOrigins: GetListOrDefault("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),
		LogLevel: GetEnvOrDefault("LOG_LEVEL", "info"),

		OpenAIEndpoint:   GetEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
		OpenAIKey:        GetEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
		OpenAIDeployment: GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-35-turbo"),
	}

	var err error
	if cfg.RedisDB, err = GetIntOrDefault("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.BcryptCost, err = GetIntOrDefault("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}
	if cfg.CacheTTL, err = GetDurationOrDefault("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if cfg.CartLockTTL, err = GetDurationOrDefault("CART_LOCK_TTL", 2*DefaultTimeout); err != nil {
		return nil, fmt.Errorf("CART_LOCK_TTL: %w", err)
	}
	// cart writes under the lock are bounded by DefaultTimeout
	if cfg.CartLockTTL < DefaultTimeout {
		return nil, fmt.Errorf("CART_LOCK_TTL must be at least %s", DefaultTimeout)
	}

	switch cfg.Storage {
	case StorageMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGODB_URI is not set in environment variables")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}
