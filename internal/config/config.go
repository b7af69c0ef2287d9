package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string
	DBPath          string
	StoragePath     string
	AuthToken       string
	APIKey          string
	UpstreamBaseURL string
	AllowedHosts    []string
	MaxImageBytes   int64
	FetchTimeout    time.Duration
	ThumbnailMaxDim int
}

func Load() *Config {
	// A local .env file is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getEnv("SR_LISTEN_ADDR", ":8080"),
		DBPath:          getEnv("SR_DB_PATH", "/data/db/searches.db"),
		StoragePath:     getEnv("SR_STORAGE_PATH", "/data/thumbs"),
		AuthToken:       getEnv("SR_AUTH_TOKEN", ""),
		APIKey:          getEnv("SR_API_KEY", ""),
		UpstreamBaseURL: getEnv("SR_UPSTREAM_BASE_URL", "https://saucenao.com"),
		AllowedHosts:    getEnvList("SR_ALLOWED_HOSTS", nil),
		MaxImageBytes:   getEnvInt64("SR_MAX_IMAGE_BYTES", 20<<20),
		FetchTimeout:    time.Duration(getEnvInt64("SR_FETCH_TIMEOUT", 10)) * time.Second,
		ThumbnailMaxDim: int(getEnvInt64("SR_THUMBNAIL_MAX_DIM", 256)),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvList parses a comma-separated env var, trimming whitespace and
// dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
