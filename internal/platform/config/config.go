package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string
	// IssuerToken, when set, gates issuance behind a shared issuer secret.
	// Empty keeps the registry's historical open issuance policy.
	IssuerToken string
	// TTLThreshold and TTLExtension parameterize storage lifetime renewal:
	// a mutation renews the registry entry to TTLExtension whenever its
	// remaining lifetime is below TTLThreshold. Zero means store defaults.
	TTLThreshold time.Duration
	TTLExtension time.Duration
	Redis        RedisConfig
	Audit        AuditConfig
}

// RedisConfig captures connection settings for the registry's backing store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects the audit sink. Without brokers the structured log is
// the only sink.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LAUREL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("LAUREL_AUDIT_TOPIC")
	if topic == "" {
		topic = "laurel.audit"
	}

	return Server{
		Addr:         addr,
		IssuerToken:  os.Getenv("LAUREL_ISSUER_TOKEN"),
		TTLThreshold: envDuration("LAUREL_TTL_THRESHOLD"),
		TTLExtension: envDuration("LAUREL_TTL_EXTENSION"),
		Redis: RedisConfig{
			URL:          os.Getenv("LAUREL_REDIS_URL"),
			PoolSize:     envInt("LAUREL_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("LAUREL_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			Brokers: envList("LAUREL_AUDIT_BROKERS"),
			Topic:   topic,
		},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return value
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
