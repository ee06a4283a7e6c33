package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	Store          string
	PostgresDSN    string
	SessionBackend string
	SessionTTL     time.Duration
	CookieSecure   bool
	RedisAddr      string
	RedisPassword  string
	MongoURI       string
	MongoDB        string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	CORSOrigins    []string
	LogLevel       string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:           getenv("PORT", "8080"),
		Store:          getenv("STORE", "postgres"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		SessionBackend: getenv("SESSION_BACKEND", "redis"),
		SessionTTL:     getduration("SESSION_TTL", 24*time.Hour),
		CookieSecure:   getenv("COOKIE_SECURE", "false") == "true",
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "projecthub"),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "project-files"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		CORSOrigins:    getlist("CORS_ORIGINS", []string{"http://localhost:8080"}),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getlist(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
