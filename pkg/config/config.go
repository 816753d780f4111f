// Package config loads the small set of environment-driven settings
// go-bandit's remote storage backend needs to dial Redis. It mirrors
// the teacher's pkg/config.Load: godotenv for local .env files, plain
// os.Getenv with defaults, and a single validated struct returned to
// the caller.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RedisConfig holds connection parameters for storage.NewRedisBackend.
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the top-level configuration for a host embedding go-bandit
// with the remote backend. Hosts using the memory backend never need
// to load this.
type Config struct {
	Redis RedisConfig
}

// Load reads REDIS_* environment variables (after loading a local .env
// file, if present) into a Config. Unlike the teacher's Load, an
// unset REDIS_DB is not fatal — it defaults to 0, since go-bandit does
// not otherwise require Redis at all.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid REDIS_DB")
		}
		redisDB = n
	}

	poolSize := 10
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid REDIS_POOL_SIZE")
		}
		poolSize = n
	}

	return &Config{
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			PoolSize:     poolSize,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
