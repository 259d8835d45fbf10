package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSummarizerBaseURL is the summarization host the mobile client was built against.
const DefaultSummarizerBaseURL = "http://192.168.8.199:8000"

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	CORSAllowOrigin   []string
	DatabaseURL       string
	ObjectStoreType   string
	LocalStoreDir     string
	PublicBaseURL     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
	S3PublicBaseURL   string
	S3URLExpiry       time.Duration
	SummarizerBaseURL string
	SummarizerTimeout time.Duration
	UploadsPerMinute  float64
}

// Load reads configuration from environment variables with sensible defaults.
// Values missing from the environment fall back to the optional TOML file named by
// STUDYMATE_CONFIG, then to the defaults below.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("STUDYMATE_CONFIG"))
	if err != nil {
		log.Printf("config file ignored: %v", err)
	}
	get := func(key, def string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if val, ok := file[key]; ok && val != "" {
			return val
		}
		return def
	}

	env := normalizeEnv(get("ENV", "dev"))
	dbURL := get("DATABASE_URL", "")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:              get("PORT", "8080"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(get("CORS_ALLOW_ORIGINS", "http://localhost:8081")),
		DatabaseURL:       dbURL,
		ObjectStoreType:   normalizeStoreType(get("OBJECT_STORE", "local")),
		LocalStoreDir:     get("LOCAL_STORE_DIR", "./data"),
		PublicBaseURL:     strings.TrimRight(get("PUBLIC_BASE_URL", ""), "/"),
		AWSRegion:         get("AWS_REGION", ""),
		S3Bucket:          get("S3_BUCKET", ""),
		S3Prefix:          get("S3_PREFIX", ""),
		SSEKMSKeyID:       get("SSE_KMS_KEY_ID", ""),
		S3PublicBaseURL:   strings.TrimRight(get("S3_PUBLIC_BASE_URL", ""), "/"),
		S3URLExpiry:       parseDuration(get("S3_URL_EXPIRY", ""), 7*24*time.Hour),
		SummarizerBaseURL: strings.TrimRight(get("SUMMARIZER_BASE_URL", DefaultSummarizerBaseURL), "/"),
		SummarizerTimeout: time.Duration(parseInt(get("SUMMARIZER_TIMEOUT_SECONDS", ""), 0)) * time.Second,
		UploadsPerMinute:  float64(parseInt(get("UPLOAD_RATE_PER_MINUTE", ""), 10)),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Printf("config: invalid int %q, using %d", raw, def)
		return def
	}
	return val
}

func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config: invalid duration %q, using %s", raw, def)
		return def
	}
	return val
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
