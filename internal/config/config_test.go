package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("CACHE_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, CacheNone, cfg.CacheBackend)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoadRejectsUnboundedMemoryCache(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_MAX_ITEMS", "0")
	_, err := Load()
	assert.ErrorContains(t, err, "CACHE_MAX_ITEMS")
}

func TestLoadRejectsUnknownCache(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")
	_, err := Load()
	assert.ErrorContains(t, err, "CACHE_BACKEND")
}

func TestInitDBSQLiteAndMigrate(t *testing.T) {
	cfg := Config{
		DBDriver:          DriverSQLite,
		DatabaseDSN:       "file:" + t.Name() + "?mode=memory&cache=shared",
		DBMaxOpenConns:    1,
		DBMaxIdleConns:    1,
		DBConnMaxLifetime: time.Minute,
	}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(t, db) })

	require.NoError(t, Migrate(db))
	for _, table := range []string{"customers", "invoices", "revenues", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func closeDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
