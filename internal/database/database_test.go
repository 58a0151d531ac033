package database

import (
	"context"
	"path/filepath"
	"testing"

	"psocial/internal/config"
	"psocial/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "psocial"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=psocial sslmode=disable", PostgresDSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg), "sslmode=require")
}

func TestConnect_RejectsNonRelationalBackend(t *testing.T) {
	_, err := Connect(&config.Config{StoreBackend: config.BackendRedis})
	assert.Error(t, err)
}

func TestConnect_SQLiteRoundTrip(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "nested", "psocial.db"),
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	slot := store.NewSQLSlot(db)
	defer slot.Close()
	ctx := context.Background()

	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, slot.Set(ctx, "k", []byte("one")))
	require.NoError(t, slot.Set(ctx, "k", []byte("two")))

	got, err = slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, "sqlite", slot.Name())
}
