package main

import (
	"context"
	"testing"

	"psocial/internal/bootstrap"
	"psocial/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgerConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:             "test",
		Port:            "0",
		StoreBackend:    config.BackendBadger,
		StoreKey:        "psocial_db_v3",
		DataDir:         t.TempDir(),
		PasswordHashing: config.HashingPlain,
	}
}

// Badger locks its directory until closed, so reopening proves run released
// the runtime.
func reopen(t *testing.T, cfg *config.Config) *bootstrap.Runtime {
	t.Helper()
	rt, err := bootstrap.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestRun_ClosesStoreOnError(t *testing.T) {
	cfg := badgerConfig(t)

	err := run(context.Background(), cfg, options{fixtures: "testdata/does-not-exist.yml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load fixtures")

	reopen(t, cfg)
}

func TestRun_AppliesFixtures(t *testing.T) {
	cfg := badgerConfig(t)

	require.NoError(t, run(context.Background(), cfg, options{fixtures: "../../internal/seed/testdata/fixtures.yml"}))

	rt := reopen(t, cfg)
	u, err := rt.Services.Users.ByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, u)
}
