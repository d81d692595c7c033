package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolConfig_ApplyDefaults(t *testing.T) {
	cfg := &PoolConfig{ConnString: "postgres://localhost/db"}
	cfg.ApplyDefaults()

	require.Equal(t, int32(20), cfg.MaxConns)
	require.Equal(t, int32(5), cfg.MinConns)
	require.Equal(t, int32(3600), cfg.MaxConnLifetime)
	require.Equal(t, int32(1800), cfg.MaxConnIdleTime)
	require.Equal(t, int32(60), cfg.HealthCheckPeriod)
	require.Equal(t, int32(10), cfg.ConnectTimeout)
	require.Equal(t, int32(30), cfg.ConnectRetrySeconds)
}

func TestStoreConfig_Validate(t *testing.T) {
	cfg := &StoreConfig{}
	require.Error(t, cfg.Validate())

	cfg.ConnString = "postgres://localhost/db"
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, int32(10), cfg.QueryTimeoutSeconds)

	cfg.QueryTimeoutSeconds = -2
	require.Error(t, cfg.Validate())
}
