package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DatabaseConfig holds the database-related configuration.
type DatabaseConfig struct {
	Type      string
	Path      string
	RedisAddr string
	RedisPass string
	RedisDB   int
	RedisKey  string
}

// Supported DATABASE_TYPE values.
const (
	TypeFile  = "file"
	TypeBolt  = "bolt"
	TypeRedis = "redis"
)

// LoadDatabaseConfig loads database configuration from environment variables.
// dataDir is used to derive default paths for the file and bolt backends.
func LoadDatabaseConfig(dataDir string) (*DatabaseConfig, error) {
	dbType := os.Getenv("DATABASE_TYPE")
	if dbType == "" {
		dbType = TypeFile
	}

	config := &DatabaseConfig{
		Type: dbType,
		Path: os.Getenv("DATABASE_PATH"),
	}

	switch dbType {
	case TypeFile:
		if config.Path == "" {
			config.Path = filepath.Join(dataDir, "baseline.json")
		}
	case TypeBolt:
		if config.Path == "" {
			config.Path = filepath.Join(dataDir, "defacemon.db")
		}
	case TypeRedis:
		config.RedisAddr = os.Getenv("REDIS_ADDR")
		if config.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for RedisDB")
		}
		config.RedisPass = os.Getenv("REDIS_PASSWORD")
		config.RedisKey = os.Getenv("REDIS_KEY")
		if config.RedisKey == "" {
			config.RedisKey = defaultRedisKey
		}
		dbStr := os.Getenv("REDIS_DB")
		if dbStr != "" {
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("invalid REDIS_DB value: %v", err)
			}
			config.RedisDB = db
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", dbType)
	}

	return config, nil
}

// Open builds and initializes the backend selected by cfg.
func Open(ctx context.Context, cfg *DatabaseConfig) (Database, error) {
	var (
		db  Database
		err error
	)
	switch cfg.Type {
	case TypeFile:
		db = NewFileDB(cfg.Path)
	case TypeBolt:
		db, err = NewBoltDB(cfg.Path)
	case TypeRedis:
		db, err = NewRedisDB(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to initialize %s database: %w", cfg.Type, err)
	}
	return db, nil
}
