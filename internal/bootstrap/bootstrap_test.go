package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"psocial/internal/config"
	"psocial/internal/models"
	"psocial/internal/service"
	"psocial/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Env:             "test",
		Port:            "0",
		StoreBackend:    backend,
		StoreKey:        "psocial_db_v3",
		DataDir:         dir,
		SQLitePath:      filepath.Join(dir, "psocial.db"),
		PasswordHashing: config.HashingPlain,
	}
}

func TestNew_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, backend := range []string{
		config.BackendMemory,
		config.BackendFile,
		config.BackendBadger,
		config.BackendRedis,
		config.BackendSQLite,
	} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			cfg.RedisURL = mr.Addr()
			ctx := context.Background()

			rt, err := New(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = rt.Close() })

			require.NoError(t, rt.Services.Auth.Login(ctx, store.AdminUsername, store.AdminPassword))
			admin, err := rt.Services.Auth.IsAdmin(ctx)
			require.NoError(t, err)
			assert.True(t, admin)

			var agg *models.Aggregate
			agg, err = rt.Store.Load(ctx)
			require.NoError(t, err)
			assert.True(t, agg.Seeded)
			assert.Equal(t, 1, agg.Metrics.Logins)
		})
	}
}

func TestNew_PersistsAcrossRestart(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	ctx := context.Background()

	rt, err := New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, rt.Services.Auth.Register(ctx, service.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "pw",
	}))
	require.NoError(t, rt.Close())

	rt, err = New(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = rt.Close() }()

	u, err := rt.Services.Users.ByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u)

	users, err := rt.Services.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2, "seed must not run twice")
}

func TestNew_BcryptHashesSeededAdmin(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.PasswordHashing = config.HashingBcrypt
	ctx := context.Background()

	rt, err := New(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = rt.Close() }()

	agg, err := rt.Store.Load(ctx)
	require.NoError(t, err)
	admin := agg.UserByIdentity(store.AdminUsername)
	require.NotNil(t, admin)
	assert.NotEqual(t, store.AdminPassword, admin.Password)
	assert.NoError(t, rt.Services.Auth.Login(ctx, store.AdminUsername, store.AdminPassword))
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig(t, "cassandra")
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t, config.BackendMemory)
	cfg.PasswordHashing = "rot13"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t, config.BackendRedis)
	cfg.RedisURL = "127.0.0.1:1"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
