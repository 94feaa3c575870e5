package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/y0ug/defacemon/internal/database/models"
)

func sampleBaseline(url string) models.Baseline {
	return models.Baseline{
		CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		SourceURL: url,
		Zones: models.ZoneSet{
			{ID: "header", Hash: "aa", Preview: "Welcome"},
			{ID: "sidebar", Hash: "bb", Preview: "Quick Links"},
		},
		Images: models.ImageSet{
			{ID: "logo1", Path: "/static/images/logo1.png", Hash: "cc", Size: 128},
		},
	}
}

// exerciseDatabase runs the behaviour every backend must share.
func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()
	ctx := context.Background()

	exists, err := db.BaselineExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = db.LoadBaseline(ctx)
	require.True(t, errors.Is(err, ErrBaselineNotFound), "got %v", err)

	first := sampleBaseline("http://first.example")
	require.NoError(t, db.SaveBaseline(ctx, first))

	exists, err = db.BaselineExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	loaded, err := db.LoadBaseline(ctx)
	require.NoError(t, err)
	require.Equal(t, first, loaded)

	// A second save replaces the record wholesale.
	second := models.Baseline{
		CreatedAt: first.CreatedAt.Add(time.Hour),
		SourceURL: "http://second.example",
		Zones:     models.ZoneSet{{ID: "footer", Hash: "dd"}},
		Images:    models.ImageSet{},
	}
	require.NoError(t, db.SaveBaseline(ctx, second))
	loaded, err = db.LoadBaseline(ctx)
	require.NoError(t, err)
	require.Equal(t, second, loaded)

	deleted, err := db.DeleteBaseline(ctx)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = db.DeleteBaseline(ctx)
	require.NoError(t, err)
	require.False(t, deleted)

	exists, err = db.BaselineExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "baseline.json")
	db := NewFileDB(path)
	require.NoError(t, db.Initialize(context.Background()))
	exerciseDatabase(t, db)
}

func TestFileDBCorruptRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	db := NewFileDB(path)
	exists, err := db.BaselineExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = db.LoadBaseline(ctx)
	require.True(t, errors.Is(err, ErrCorruptBaseline), "got %v", err)
	require.False(t, errors.Is(err, ErrBaselineNotFound))
}

func TestFileDBWritesReadableDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db := NewFileDB(filepath.Join(dir, "baseline.json"))
	require.NoError(t, db.SaveBaseline(ctx, sampleBaseline("http://localhost:9000")))

	data, err := os.ReadFile(db.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  \"url\": \"http://localhost:9000\"")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestBoltDB(t *testing.T) {
	db, err := NewBoltDB(filepath.Join(t.TempDir(), "defacemon.db"))
	require.NoError(t, err)
	defer db.Close(context.Background())
	require.NoError(t, db.Initialize(context.Background()))
	exerciseDatabase(t, db)
}

func TestRedisDB(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	db, err := NewRedisDB(ctx, &DatabaseConfig{
		Type:      TypeRedis,
		RedisAddr: addr,
		RedisKey:  "defacemon:test:" + t.Name(),
	})
	require.NoError(t, err)
	defer db.Close(ctx)
	_, _ = db.DeleteBaseline(ctx)
	exerciseDatabase(t, db)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DATABASE_PATH", "")
	cfg, err := LoadDatabaseConfig("var/data")
	require.NoError(t, err)
	require.Equal(t, TypeFile, cfg.Type)
	require.Equal(t, filepath.Join("var/data", "baseline.json"), cfg.Path)

	t.Setenv("DATABASE_TYPE", TypeBolt)
	cfg, err = LoadDatabaseConfig("var/data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("var/data", "defacemon.db"), cfg.Path)

	t.Setenv("DATABASE_TYPE", TypeRedis)
	t.Setenv("REDIS_ADDR", "")
	_, err = LoadDatabaseConfig("var/data")
	require.Error(t, err)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	cfg, err = LoadDatabaseConfig("var/data")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, defaultRedisKey, cfg.RedisKey)

	t.Setenv("DATABASE_TYPE", "sqlite")
	_, err = LoadDatabaseConfig("var/data")
	require.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "baseline.json")
	db, err := Open(ctx, &DatabaseConfig{Type: TypeFile, Path: path})
	require.NoError(t, err)
	defer db.Close(ctx)

	require.NoError(t, db.SaveBaseline(ctx, sampleBaseline("http://localhost:9000")))
	_, err = os.Stat(path)
	require.NoError(t, err)
}
