package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv  string
	Port    string
	BaseURL string

	// MediaDir is the root for served media: videos live under
	// MediaDir/videos/{prompt,overview}, site images under MediaDir/images.
	MediaDir string

	SarvamAPIKey     string
	SarvamTTSModel   string
	SarvamTTSSpeaker string

	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	DatabaseURL string
	GeoIPDBPath string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	EncodeWorkers int
	EncodeTimeout time.Duration
	ProbeTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Provider credentials are intentionally not validated
// here: a missing key surfaces as a per-request failure at the first
// capability invocation, not as a refused startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		BaseURL:  strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		MediaDir: getEnv("MEDIA_DIR", "static"),

		SarvamAPIKey:     os.Getenv("SARVAM_API_KEY"),
		SarvamTTSModel:   getEnv("SARVAM_TTS_MODEL", "bulbul:v3"),
		SarvamTTSSpeaker: getEnv("SARVAM_TTS_SPEAKER", "anushka"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "videos"),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "*")),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),

		EncodeWorkers: getEnvInt("ENCODE_WORKERS", 1),
		EncodeTimeout: time.Second * time.Duration(getEnvInt("ENCODE_TIMEOUT_SECONDS", 300)),
		ProbeTimeout:  time.Second * time.Duration(getEnvInt("PROBE_TIMEOUT_SECONDS", 15)),
	}

	if cfg.EncodeWorkers <= 0 {
		cfg.EncodeWorkers = 1
	}

	return cfg, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
