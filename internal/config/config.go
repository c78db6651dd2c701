package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTExpirySeconds   int64
	TrackingSecret     string
	MaxFileSizeBytes   int64
	CorsAllowedOrigins []string
	SeedDemo           bool
	AdminUsername      string
	AdminPassword      string
	RestaurantName     string
	RestaurantPhone    string

	// Ordering
	DeliveryFee                float64
	OrderCapacity              int64
	EstimatedPrepMinutes       int64
	CatalogDiscountsAtCheckout bool
	ReportTimezone             string
	IdempotencyTTL             time.Duration
	WSHeartbeatInterval        time.Duration

	RedisURL        string
	SnapshotBackend string
	SnapshotPrefix  string

	RabbitMQURL           string
	RabbitMQExchange      string
	RabbitMQRealtimeQueue string
	WorkerMaxRetries      int64
	WorkerRetryDelay      time.Duration

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", ""),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8086"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:   getEnvInt64("JWT_EXPIRY", 86400),
		TrackingSecret:     getEnvFirst([]string{"TRACKING_SECRET", "ORDER_TRACKING_TOKEN_SECRET"}, "dev-insecure-tracking-secret"),
		MaxFileSizeBytes:   getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		SeedDemo:           getEnvBool("SEED_DEMO", true),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		RestaurantName:     getEnv("RESTAURANT_NAME", "Delicious Restaurant"),
		RestaurantPhone:    getEnv("RESTAURANT_PHONE", "02-123-4567"),

		DeliveryFee:                getEnvFloat("DELIVERY_FEE", 30),
		OrderCapacity:              getEnvInt64("ORDER_CAPACITY", 999),
		EstimatedPrepMinutes:       getEnvInt64("ESTIMATED_PREP_MINUTES", 30),
		CatalogDiscountsAtCheckout: getEnvBool("PRICING_CATALOG_DISCOUNTS_AT_CHECKOUT", false),
		ReportTimezone:             getEnv("REPORT_TIMEZONE", "Asia/Bangkok"),
		IdempotencyTTL:             getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		WSHeartbeatInterval:        getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),

		RedisURL:        getEnv("REDIS_URL", ""),
		SnapshotBackend: strings.ToLower(getEnv("SNAPSHOT_BACKEND", "none")),
		SnapshotPrefix:  getEnv("SNAPSHOT_PREFIX", "snapshots/"),

		RabbitMQURL:           getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:      getEnv("RABBITMQ_EXCHANGE", "restaurant.events"),
		RabbitMQRealtimeQueue: getEnv("RABBITMQ_REALTIME_QUEUE", ""),
		WorkerMaxRetries:      getEnvInt64("WORKER_MAX_RETRIES", 3),
		WorkerRetryDelay:      getEnvDuration("WORKER_RETRY_DELAY", 2*time.Second),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.DeliveryFee < 0 {
		cfg.DeliveryFee = 0
	}
	if cfg.OrderCapacity <= 0 {
		cfg.OrderCapacity = 999
	}
	if cfg.EstimatedPrepMinutes <= 0 {
		cfg.EstimatedPrepMinutes = 30
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-insecure-jwt-secret"
	}
	if cfg.AdminPassword == "" && !cfg.IsProduction() {
		cfg.AdminPassword = "admin123"
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ObjectStoreConfigured reports whether enough settings exist to build an S3 client.
func (c Config) ObjectStoreConfigured() bool {
	return c.ObjectStoreEndpoint != "" && c.ObjectStoreBucket != "" &&
		c.ObjectStoreAccessKeyID != "" && c.ObjectStoreSecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
