package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env files).
type Config struct {
	Port            string
	GinMode         string
	DBDriver        string
	DBDSN           string
	SQLitePath      string
	SessionSecret   string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string // CORS; "*" — любой origin

	StorageBackend string
	MediaRoot      string
	MediaURL       string
	MaxImageBytes  int64

	S3Region    string
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load грузит .env из текущей папки и родительских (когда запускаем из
// cmd/server), потом читает переменные окружения.
func Load() Config {
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	cfg := Config{
		Port:            getenv("APP_PORT", "8080"),
		GinMode:         getenv("GIN_MODE", "debug"),
		DBDSN:           os.Getenv("DB_DSN"),
		SQLitePath:      getenv("SQLITE_PATH", "catalog.db"),
		SessionSecret:   getenv("SESSION_SECRET", "dev_fallback_secret"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "console"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  getList("ALLOWED_ORIGINS", "http://localhost:3000"),

		StorageBackend: getenv("STORAGE_BACKEND", "local"),
		MediaRoot:      getenv("MEDIA_ROOT", "media"),
		MediaURL:       getenv("MEDIA_URL", "/media/"),
		MaxImageBytes:  getInt64("MAX_IMAGE_BYTES", 5<<20),

		S3Region:    getenv("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	cfg.DBDriver = os.Getenv("DB_DRIVER")
	if cfg.DBDriver == "" {
		if cfg.DBDSN != "" {
			cfg.DBDriver = "postgres"
		} else {
			cfg.DBDriver = "sqlite"
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getList splits a comma-separated value, dropping blanks and trailing slashes.
func getList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getenv(key, fallback), ",") {
		if v = strings.TrimRight(strings.TrimSpace(v), "/"); v != "" {
			out = append(out, v)
		}
	}
	return out
}
