package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	Redis RedisConfig
	Kafka KafkaConfig
	Blob  BlobConfig
}

// RedisConfig configures the optional Redis connection backing the token
// revocation list. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit outbox relay. Empty Brokers
// disables the relay; outbox rows then stay in Postgres until a relay runs.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// BlobConfig selects the document blob store backend.
type BlobConfig struct {
	// Backend is one of "s3", "filesystem", "memory".
	Backend string
	// Root is the base directory for the filesystem backend.
	Root string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("ADOPSI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tokenTTL = d
		}
	}

	blobBackend := os.Getenv("BLOB_BACKEND")
	if blobBackend == "" {
		blobBackend = "filesystem"
	}
	blobRoot := os.Getenv("BLOB_ROOT")
	if blobRoot == "" {
		blobRoot = "./uploads"
	}

	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "adopsi.audit"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     "adopsi",
		TokenTTL:      tokenTTL,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: auditTopic,
		},
		Blob: BlobConfig{
			Backend:     blobBackend,
			Root:        blobRoot,
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Region:    os.Getenv("S3_REGION"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
