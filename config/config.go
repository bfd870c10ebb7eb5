package config

import (
	"fmt"
	"kucukaslan/necoport/domain"
	"os"
	"strconv"
	"strings"
)

// DefaultPort is used by the greeter when PORT is missing or empty
const DefaultPort = 8000

// Config holds the greeter configuration
type Config struct {
	Port   int
	Porter PorterConfig
}

// PorterConfig holds the optional registration with necoportd
type PorterConfig struct {
	URL              string // empty disables registration
	ServiceName      string
	HeartbeatSeconds int
	TimeoutSeconds   int
}

// LauncherConfig holds the necoport launcher settings
type LauncherConfig struct {
	Porter             PorterConfig
	StopTimeoutSeconds int // grace period between SIGTERM and SIGKILL
	StartGapMillis     int // pause between services started together
}

// DefaultDaemonURL is where the launcher looks for necoportd when NECOPORTD_URL is unset
const DefaultDaemonURL = "http://127.0.0.1:5555"

// DaemonConfig holds the necoportd configuration
type DaemonConfig struct {
	Host              string
	Port              string
	RangeStart        int
	RangeEnd          int
	LeaseSeconds      int64
	GCIntervalSeconds int
	ClickHouse        ClickHouseConfig
	Redis             RedisConfig
}

// ClickHouseConfig holds the lease audit log settings
type ClickHouseConfig struct {
	Enabled                bool
	Host                   string
	Port                   string
	Database               string
	User                   string
	Password               string
	DSN                    string
	AsyncInsertEnabled     bool  // whether to use async inserts
	AsyncInsertWait        int   // wait_for_async_insert (0 or 1)
	AsyncInsertMaxDataSize int64 // async_insert_max_data_size in bytes
	AsyncInsertBusyTimeout int   // async_insert_busy_timeout_ms in milliseconds
	BufferChannelCapacity  int   // capacity of the audit event channel
	BatchSize              int   // number of events to batch before flushing
	FlushIntervalSeconds   int   // time interval in seconds to flush batches
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	Endpoint string
	DB       int
}

// Load reads the greeter configuration from environment variables
func Load() (*Config, error) {
	port, err := ParsePort(os.Getenv("PORT"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port: port,
		Porter: PorterConfig{
			URL:              strings.TrimRight(getEnv("NECOPORTD_URL", ""), "/"),
			ServiceName:      getEnv("NECOPORT_SERVICE", "greeter"),
			HeartbeatSeconds: getEnvAsInt("NECOPORT_HEARTBEAT_SECONDS", 300),
			TimeoutSeconds:   getEnvAsInt("NECOPORT_TIMEOUT_SECONDS", 3),
		},
	}, nil
}

// LoadLauncher reads the launcher configuration from environment variables. Unlike
// the greeter, the launcher always talks to a daemon.
func LoadLauncher() *LauncherConfig {
	return &LauncherConfig{
		Porter: PorterConfig{
			URL:              strings.TrimRight(getEnv("NECOPORTD_URL", DefaultDaemonURL), "/"),
			HeartbeatSeconds: getEnvAsInt("NECOPORT_HEARTBEAT_SECONDS", 300),
			TimeoutSeconds:   getEnvAsInt("NECOPORT_TIMEOUT_SECONDS", 3),
		},
		StopTimeoutSeconds: getEnvAsInt("NECOPORT_STOP_TIMEOUT_SECONDS", 5),
		StartGapMillis:     getEnvAsInt("NECOPORT_START_GAP_MS", 1000),
	}
}

// LoadDaemon reads the necoportd configuration from environment variables
func LoadDaemon() (*DaemonConfig, error) {
	start, end, err := ParseRange(getEnv("NECOPORT_RANGE", "3000-3999"))
	if err != nil {
		return nil, err
	}

	return &DaemonConfig{
		Host:              getEnv("NECOPORTD_HOST", "127.0.0.1"),
		Port:              getEnv("NECOPORTD_PORT", "5555"),
		RangeStart:        start,
		RangeEnd:          end,
		LeaseSeconds:      getEnvAsInt64("NECOPORT_LEASE_SECONDS", 600),
		GCIntervalSeconds: getEnvAsInt("NECOPORT_GC_INTERVAL_SECONDS", 30),
		ClickHouse: ClickHouseConfig{
			Enabled:                getEnv("CLICKHOUSE_ENABLED", "1") == "1",
			Host:                   getEnv("CLICKHOUSE_HOST", "127.0.0.1"),
			Port:                   getEnv("CLICKHOUSE_PORT", "9000"),
			Database:               getEnv("CLICKHOUSE_DATABASE", "default"),
			User:                   getEnv("CLICKHOUSE_USER", "default"),
			Password:               getEnv("CLICKHOUSE_PASSWORD", ""),
			DSN:                    getEnv("CLICKHOUSE_DSN", ""),
			AsyncInsertEnabled:     getEnv("CLICKHOUSE_ASYNC_INSERT_ENABLED", "1") == "1",
			AsyncInsertWait:        getEnvAsInt("CLICKHOUSE_ASYNC_INSERT_WAIT", 1),
			AsyncInsertMaxDataSize: getEnvAsInt64("CLICKHOUSE_ASYNC_INSERT_MAX_DATA_SIZE", 10485760),
			AsyncInsertBusyTimeout: getEnvAsInt("CLICKHOUSE_ASYNC_INSERT_BUSY_TIMEOUT", 200),
			BufferChannelCapacity:  getEnvAsInt("AUDIT_BUFFER_CAPACITY", 10000),
			BatchSize:              getEnvAsInt("AUDIT_BATCH_SIZE", 500),
			FlushIntervalSeconds:   getEnvAsInt("AUDIT_FLUSH_INTERVAL_SECONDS", 1),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Endpoint: getEnv("REDIS_ENDPOINT", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}, nil
}

// ParsePort resolves a PORT value. Empty means DefaultPort; anything that is not
// an integer in 0-65535 is a bind error.
func ParsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPort, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.BindError{Addr: ":" + raw, Err: fmt.Errorf("invalid PORT %q: %w", raw, err)}
	}
	if port < 0 || port > 65535 {
		return 0, &domain.BindError{Addr: ":" + raw, Err: domain.ErrPortOutOfRange}
	}
	return port, nil
}

// ParseRange parses an inclusive "start-end" port range
func ParseRange(raw string) (int, int, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid port range %q: expected start-end", raw)
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range start %q: %w", from, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range end %q: %w", to, err)
	}
	if start < 1 || end > 65535 || start > end {
		return 0, 0, fmt.Errorf("invalid port range %d-%d", start, end)
	}
	return start, end, nil
}

func (c *ClickHouseConfig) GetClickHouseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	dsn := "clickhouse://"
	if c.User != "" {
		dsn += c.User
		if c.Password != "" {
			dsn += ":" + c.Password
		}
		dsn += "@"
	}
	dsn += c.Host + ":" + c.Port + "/" + c.Database

	if c.AsyncInsertEnabled {
		params := []string{
			"async_insert=1",
			fmt.Sprintf("wait_for_async_insert=%d", c.AsyncInsertWait),
			fmt.Sprintf("async_insert_max_data_size=%d", c.AsyncInsertMaxDataSize),
			fmt.Sprintf("async_insert_busy_timeout_ms=%d", c.AsyncInsertBusyTimeout),
		}
		dsn += "?" + strings.Join(params, "&")
	}

	return dsn
}

// Enabled reports whether the greeter should register with necoportd
func (p PorterConfig) Enabled() bool {
	return p.URL != ""
}

func (r *RedisConfig) GetRedisAddr() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return r.Host + ":" + r.Port
}

// Addr is the listen address of the daemon
func (d *DaemonConfig) Addr() string {
	return d.Host + ":" + d.Port
}

// RangeSize is the number of ports the daemon manages
func (d *DaemonConfig) RangeSize() int {
	return d.RangeEnd - d.RangeStart + 1
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
