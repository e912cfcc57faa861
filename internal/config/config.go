// Package config loads service configuration from the environment, with a
// .env file picked up in development.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Deepgram (preferred transcription provider)
	DeepgramKey        string
	TranscribeLanguage string // ISO 639-1 hint for the transcriber
	TranscribeDiarize  bool   // Speaker diarization (Deepgram only)

	// OpenAI (Whisper transcription fallback)
	OpenAIKey string

	// Gemini (transcript analysis)
	GeminiKey   string
	GeminiModel string // empty = service default

	// Rendering
	TempDir string // scratch space for ffmpeg stages

	// Worker
	MaxConcurrentJobs    int // jobs pulled from the queue at once
	MaxConcurrentRenders int // clips rendered in parallel within one project job
}

// Load reads the environment (plus .env when present) and validates that
// every provider the pipeline depends on is configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:               getEnv("API_PORT", "8080"),
		WorkerEnabled:         getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "clipforge-media"),
		DeepgramKey:           getEnv("DEEPGRAM_API_KEY", ""),
		TranscribeLanguage:    getEnv("TRANSCRIBE_LANGUAGE", "en"),
		TranscribeDiarize:     getEnvBool("TRANSCRIBE_DIARIZE", false),
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		GeminiKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", ""),
		TempDir:               getEnv("TEMP_DIR", "/tmp/clipforge"),
		MaxConcurrentJobs:     getEnvInt("MAX_CONCURRENT_JOBS", 5),
		MaxConcurrentRenders:  getEnvInt("MAX_CONCURRENT_RENDERS", 2),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields. The API key, CORS origins and all
// tuning knobs are optional; the data stores and AI providers are not.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.GeminiKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.DeepgramKey == "" && c.OpenAIKey == "" {
		return errors.New("either DEEPGRAM_API_KEY or OPENAI_API_KEY is required for transcription")
	}
	if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
		return errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool and getEnvInt fall back to the default when the value does
// not parse, rather than failing startup over a typo in a tuning knob.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
