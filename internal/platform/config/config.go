package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv keeps main lean; every
// value has a development default so the server runs with no environment at all.
type Config struct {
	Addr string

	// Monitoring tunables.
	MaxAlertHistory  int           // bounded lifecycle working set
	RetentionWindow  time.Duration // active-alert retention window
	ReplayDepth      int           // alert bus replay for late subscribers
	SubscriberBuffer int           // per-subscriber bus queue
	SweepInterval    time.Duration // lifecycle expiry sweep cadence

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig configures the durable audit/compliance stores.
// An empty DSN means in-memory stores only.
type PostgresConfig struct {
	DSN string
}

// RedisConfig configures the dashboard snapshot cache.
// An empty URL means caching is disabled.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SnapshotTTL  time.Duration
}

// KafkaConfig configures the alert bus relay to remote consumers.
// Empty brokers means the relay is disabled.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:             envString("SITEWATCH_ADDR", ":8080"),
		MaxAlertHistory:  envInt("SITEWATCH_MAX_ALERT_HISTORY", 1000),
		RetentionWindow:  envDuration("SITEWATCH_RETENTION_WINDOW", 72*time.Hour),
		ReplayDepth:      envInt("SITEWATCH_REPLAY_DEPTH", 10),
		SubscriberBuffer: envInt("SITEWATCH_SUBSCRIBER_BUFFER", 64),
		SweepInterval:    envDuration("SITEWATCH_SWEEP_INTERVAL", 5*time.Minute),
		Postgres: PostgresConfig{
			DSN: os.Getenv("SITEWATCH_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("SITEWATCH_REDIS_URL"),
			PoolSize:     envInt("SITEWATCH_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SITEWATCH_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("SITEWATCH_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SITEWATCH_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SITEWATCH_REDIS_WRITE_TIMEOUT", 3*time.Second),
			SnapshotTTL:  envDuration("SITEWATCH_DASHBOARD_CACHE_TTL", 15*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("SITEWATCH_KAFKA_BROKERS"),
			TopicPrefix: envString("SITEWATCH_KAFKA_TOPIC_PREFIX", "sitewatch"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
