package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	JWTSecret       string
	JWTTTL          time.Duration
	DBDriver        string
	SQLitePath      string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPass          string
	DBName          string
	RedisEnabled    bool
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	StorageDriver   string
	UploadDir       string
	MinioHost       string
	MinioPort       string
	MinioUsername   string
	MinioPassword   string
	MinioUseSSL     bool
	BucketName      string
	MaxUploadBytes  int64
	PreviewMaxBytes int64
	FrontendURL     string
	CORSOrigins     []string
	AdminUsername   string
	AdminEmail      string
	AdminPassword   string
	ShareRate       float64
	ShareBurst      int

	NotifyEnabled           bool
	RabbitMQURL             string
	RabbitMQHost            string
	RabbitMQPort            string
	RabbitMQUser            string
	RabbitMQPass            string
	RabbitMQVhost           string
	RabbitMQPrefetch        int
	NotifyWorkerConcurrency int
	NotifyRate              float64
	NotifyBurst             int
	NotifyRetryMax          int
	NotifyRetryDelays       []time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPTLS      bool
	SMTPStartTLS bool
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDurationList(key string, defaultValue []time.Duration) []time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := time.ParseDuration(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration and initializes sub-configs.
func InitConfig() {
	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}
	retryDelays := getEnvDurationList(
		"NOTIFY_RETRY_DELAYS",
		[]time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute, 10 * time.Minute},
	)
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	AppConfig = Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:          getEnvDuration("JWT_TTL", 24*time.Hour),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath:      getEnv("SQLITE_PATH", "cloudvault.db"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBUser:          getEnv("DB_USER", "root"),
		DBPass:          getEnv("DB_PASS", "root"),
		DBName:          getEnv("DB_NAME", "cloudvault"),
		RedisEnabled:    getEnvBool("REDIS_ENABLED", false),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		MinioHost:       getEnv("MINIO_HOST", "localhost"),
		MinioPort:       getEnv("MINIO_PORT", "9000"),
		MinioUsername:   getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword:   getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		BucketName:      getEnv("BUCKET_NAME", "cloudvault"),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", 100<<20),
		PreviewMaxBytes: getEnvInt64("PREVIEW_MAX_BYTES", 10<<20),
		FrontendURL:     frontendURL,
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{frontendURL}),
		AdminUsername:   getEnv("ADMIN_USERNAME", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		ShareRate:       getEnvFloat("SHARE_RATE", 5),
		ShareBurst:      getEnvInt("SHARE_BURST", 20),

		NotifyEnabled:           getEnvBool("NOTIFY_ENABLED", false),
		RabbitMQURL:             rabbitURL,
		RabbitMQHost:            rabbitHost,
		RabbitMQPort:            rabbitPort,
		RabbitMQUser:            rabbitUser,
		RabbitMQPass:            rabbitPass,
		RabbitMQVhost:           rabbitVhost,
		RabbitMQPrefetch:        getEnvInt("RABBITMQ_PREFETCH", 8),
		NotifyWorkerConcurrency: getEnvInt("NOTIFY_WORKER_CONCURRENCY", 4),
		NotifyRate:              getEnvFloat("NOTIFY_RATE", 2),
		NotifyBurst:             getEnvInt("NOTIFY_BURST", 4),
		NotifyRetryMax:          getEnvInt("NOTIFY_RETRY_MAX", 5),
		NotifyRetryDelays:       retryDelays,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPTLS:      getEnvBool("SMTP_TLS", false),
		SMTPStartTLS: getEnvBool("SMTP_STARTTLS", true),
	}

	InitStorageConfig()
}
