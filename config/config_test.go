package config

import (
	"errors"
	"kucukaslan/necoport/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: DefaultPort},
		{raw: "   ", want: DefaultPort},
		{raw: "9090", want: 9090},
		{raw: "0", want: 0},
		{raw: "65535", want: 65535},
		{raw: "65536", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "http", wantErr: true},
		{raw: "80.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			port, err := ParsePort(tt.raw)
			if tt.wantErr {
				var bindErr *domain.BindError
				require.Error(t, err)
				assert.True(t, errors.As(err, &bindErr), "expected BindError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, port)
		})
	}
}

func TestParsePortOutOfRange(t *testing.T) {
	_, err := ParsePort("70000")
	assert.ErrorIs(t, err, domain.ErrPortOutOfRange)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NECOPORTD_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.Porter.Enabled())
	assert.Equal(t, "greeter", cfg.Porter.ServiceName)
	assert.Equal(t, 300, cfg.Porter.HeartbeatSeconds)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NECOPORTD_URL", "http://localhost:5555/")
	t.Setenv("NECOPORT_SERVICE", "hello")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Porter.Enabled())
	assert.Equal(t, "http://localhost:5555", cfg.Porter.URL)
	assert.Equal(t, "hello", cfg.Porter.ServiceName)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eighty")
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("3000-3999")
	require.NoError(t, err)
	assert.Equal(t, 3000, start)
	assert.Equal(t, 3999, end)

	for _, raw := range []string{"3000", "a-b", "4000-3000", "0-10", "60000-70000"} {
		_, _, err := ParseRange(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoadDaemon(t *testing.T) {
	t.Setenv("NECOPORT_RANGE", "4000-4009")
	t.Setenv("NECOPORT_LEASE_SECONDS", "60")
	t.Setenv("CLICKHOUSE_ENABLED", "0")
	t.Setenv("REDIS_ENDPOINT", "redis:6380")

	cfg, err := LoadDaemon()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5555", cfg.Addr())
	assert.Equal(t, 10, cfg.RangeSize())
	assert.Equal(t, int64(60), cfg.LeaseSeconds)
	assert.False(t, cfg.ClickHouse.Enabled)
	assert.Equal(t, "redis:6380", cfg.Redis.GetRedisAddr())
}

func TestGetClickHouseDSN(t *testing.T) {
	cfg := ClickHouseConfig{
		Host:                   "ch",
		Port:                   "9000",
		Database:               "necoport",
		User:                   "app",
		Password:               "secret",
		AsyncInsertEnabled:     true,
		AsyncInsertWait:        1,
		AsyncInsertMaxDataSize: 1024,
		AsyncInsertBusyTimeout: 200,
	}

	assert.Equal(t,
		"clickhouse://app:secret@ch:9000/necoport?async_insert=1&wait_for_async_insert=1&async_insert_max_data_size=1024&async_insert_busy_timeout_ms=200",
		cfg.GetClickHouseDSN())

	cfg.DSN = "clickhouse://override"
	assert.Equal(t, "clickhouse://override", cfg.GetClickHouseDSN())
}

func TestLoadLauncher(t *testing.T) {
	t.Setenv("NECOPORTD_URL", "")
	t.Setenv("NECOPORT_STOP_TIMEOUT_SECONDS", "")
	t.Setenv("NECOPORT_START_GAP_MS", "250")

	cfg := LoadLauncher()
	assert.Equal(t, DefaultDaemonURL, cfg.Porter.URL)
	assert.Equal(t, 5, cfg.StopTimeoutSeconds)
	assert.Equal(t, 250, cfg.StartGapMillis)

	t.Setenv("NECOPORTD_URL", "http://10.0.0.2:5555/")
	assert.Equal(t, "http://10.0.0.2:5555", LoadLauncher().Porter.URL)
}
