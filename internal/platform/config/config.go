// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	LogLevel    string
	CatalogPath string

	Server    ServerConfig
	Command   CommandConfig
	Language  LanguageConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// CommandConfig tunes the interpretation pipeline.
type CommandConfig struct {
	MaxInputRunes     int
	MaxEntities       int
	MinConfidence     float64
	ExtractTimeout    time.Duration
	ValidationWorkers int
}

// LanguageConfig selects the extraction backend: "rules" or "gemini".
type LanguageConfig struct {
	Backend        string
	APIKey         string
	Model          string
	RequestsPerSec float64
	Burst          int
	// BreakerFailures consecutive gemini failures switch extraction to the
	// rules backend until a probe succeeds.
	BreakerFailures int
	BreakerProbe    time.Duration
}

// StorageConfig selects the entry store: "memory", "postgres" or "redis".
type StorageConfig struct {
	Backend     string
	PostgresDSN string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables entry.saved events when Brokers is set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig enables bearer authentication when SigningKey is set.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	Required   bool
}

// AuditConfig selects the audit store: "memory" or "postgres".
type AuditConfig struct {
	Backend     string
	PostgresDSN string
	BufferSize  int
	SampleRate  float64
}

// RateLimitConfig bounds command submissions per user (or client address).
// A zero Limit disables limiting. Backend is "memory" or "redis".
type RateLimitConfig struct {
	Backend string
	Limit   int
	Window  time.Duration
}

// AdminConfig enables the operator routes when Token is set.
type AdminConfig struct {
	Token string
}

// FromEnv builds the configuration so main stays lean. Invalid values are
// reported rather than silently replaced.
func FromEnv() (*Config, error) {
	r := &reader{}
	cfg := &Config{
		Environment: r.str("LIFEDASH_ENV", "development"),
		LogLevel:    r.str("LOG_LEVEL", "info"),
		CatalogPath: r.str("CATALOG_PATH", ""),
		Server: ServerConfig{
			Addr:            r.str("LIFEDASH_ADDR", ":8080"),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:     r.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  r.duration("SERVER_REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: r.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxBodyBytes:    int64(r.integer("SERVER_MAX_BODY_BYTES", 64<<10)),
		},
		Command: CommandConfig{
			MaxInputRunes:     r.integer("COMMAND_MAX_INPUT_RUNES", 2000),
			MaxEntities:       r.integer("COMMAND_MAX_ENTITIES", 20),
			MinConfidence:     r.float("COMMAND_MIN_CONFIDENCE", 0.35),
			ExtractTimeout:    r.duration("COMMAND_EXTRACT_TIMEOUT", 8*time.Second),
			ValidationWorkers: r.integer("COMMAND_VALIDATION_WORKERS", 4),
		},
		Language: LanguageConfig{
			Backend:         strings.ToLower(r.str("LANGUAGE_BACKEND", "rules")),
			APIKey:          r.str("GEMINI_API_KEY", ""),
			Model:           r.str("GEMINI_MODEL", "gemini-2.5-flash"),
			RequestsPerSec:  r.float("LANGUAGE_RPS", 5),
			Burst:           r.integer("LANGUAGE_BURST", 10),
			BreakerFailures: r.integer("LANGUAGE_BREAKER_FAILURES", 5),
			BreakerProbe:    r.duration("LANGUAGE_BREAKER_PROBE", 30*time.Second),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(r.str("STORAGE_BACKEND", "memory")),
			PostgresDSN: r.str("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: r.list("KAFKA_BROKERS"),
			Topic:   r.str("KAFKA_ENTRY_TOPIC", "entry.saved"),
		},
		Auth: AuthConfig{
			SigningKey: r.str("JWT_SIGNING_KEY", ""),
			Issuer:     r.str("JWT_ISSUER", "lifedash"),
			Audience:   r.str("JWT_AUDIENCE", "lifedash-api"),
			Required:   r.boolean("AUTH_REQUIRED", false),
		},
		Audit: AuditConfig{
			Backend:     strings.ToLower(r.str("AUDIT_BACKEND", "memory")),
			PostgresDSN: r.str("AUDIT_DATABASE_URL", ""),
			BufferSize:  r.integer("AUDIT_BUFFER_SIZE", 1024),
			SampleRate:  r.float("AUDIT_OPS_SAMPLE_RATE", 1),
		},
		RateLimit: RateLimitConfig{
			Backend: strings.ToLower(r.str("RATE_LIMIT_BACKEND", "memory")),
			Limit:   r.integer("RATE_LIMIT_COMMANDS", 60),
			Window:  r.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Admin: AdminConfig{
			Token: r.str("ADMIN_TOKEN", ""),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Language.Backend {
	case "rules":
	case "gemini":
		if c.Language.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini language backend")
		}
	default:
		return fmt.Errorf("unknown LANGUAGE_BACKEND %q", c.Language.Backend)
	}

	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Audit.Backend {
	case "memory":
	case "postgres":
		if c.Audit.PostgresDSN == "" {
			c.Audit.PostgresDSN = c.Storage.PostgresDSN
		}
		if c.Audit.PostgresDSN == "" {
			return fmt.Errorf("AUDIT_DATABASE_URL or DATABASE_URL is required for the postgres audit backend")
		}
	default:
		return fmt.Errorf("unknown AUDIT_BACKEND %q", c.Audit.Backend)
	}

	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Limit < 0 {
		return fmt.Errorf("RATE_LIMIT_COMMANDS must not be negative")
	}

	if c.Auth.Required && c.Auth.SigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required when AUTH_REQUIRED is true")
	}
	if c.Command.MinConfidence < 0 || c.Command.MinConfidence > 1 {
		return fmt.Errorf("COMMAND_MIN_CONFIDENCE must be between 0 and 1")
	}
	return nil
}

// IsProduction reports whether logs should be JSON.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// reader keeps the first parse error so FromEnv reads as a flat list.
type reader struct {
	err error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) list(key string) []string {
	raw := r.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) integer(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *reader) float(key string, def float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *reader) boolean(key string, def bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *reader) fail(key, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
}
