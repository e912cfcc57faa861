package config

import (
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so ambient shell state can't
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"API_PORT", "WORKER_ENABLED", "BACKEND_API_KEY", "CORS_ALLOWED_ORIGINS",
		"DATABASE_URL", "REDIS_URL",
		"SUPABASE_URL", "SUPABASE_SERVICE_KEY", "SUPABASE_STORAGE_BUCKET",
		"DEEPGRAM_API_KEY", "TRANSCRIBE_LANGUAGE", "TRANSCRIBE_DIARIZE",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GEMINI_MODEL",
		"TEMP_DIR", "MAX_CONCURRENT_JOBS", "MAX_CONCURRENT_RENDERS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/clipforge_test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("DEEPGRAM_API_KEY", "dg-test")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if !cfg.WorkerEnabled {
		t.Error("WorkerEnabled should default to true")
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.SupabaseStorageBucket != "clipforge-media" {
		t.Errorf("SupabaseStorageBucket = %q", cfg.SupabaseStorageBucket)
	}
	if cfg.TranscribeLanguage != "en" {
		t.Errorf("TranscribeLanguage = %q, want en", cfg.TranscribeLanguage)
	}
	if cfg.TranscribeDiarize {
		t.Error("TranscribeDiarize should default to false")
	}
	if cfg.TempDir != "/tmp/clipforge" {
		t.Errorf("TempDir = %q", cfg.TempDir)
	}
	if cfg.MaxConcurrentJobs != 5 || cfg.MaxConcurrentRenders != 2 {
		t.Errorf("concurrency defaults = %d jobs, %d renders, want 5, 2",
			cfg.MaxConcurrentJobs, cfg.MaxConcurrentRenders)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("WORKER_ENABLED", "false")
	t.Setenv("TRANSCRIBE_DIARIZE", "true")
	t.Setenv("MAX_CONCURRENT_RENDERS", "4")
	t.Setenv("MAX_CONCURRENT_JOBS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIPort != "9090" {
		t.Errorf("APIPort = %q, want 9090", cfg.APIPort)
	}
	if cfg.WorkerEnabled {
		t.Error("WorkerEnabled override not applied")
	}
	if !cfg.TranscribeDiarize {
		t.Error("TranscribeDiarize override not applied")
	}
	if cfg.MaxConcurrentRenders != 4 {
		t.Errorf("MaxConcurrentRenders = %d, want 4", cfg.MaxConcurrentRenders)
	}
	// Unparseable numbers fall back to the default rather than failing.
	if cfg.MaxConcurrentJobs != 5 {
		t.Errorf("MaxConcurrentJobs = %d, want default 5", cfg.MaxConcurrentJobs)
	}
}

func TestLoadRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"missing database", "DATABASE_URL", "DATABASE_URL"},
		{"missing gemini", "GEMINI_API_KEY", "GEMINI_API_KEY"},
		{"missing supabase", "SUPABASE_URL", "SUPABASE_URL and SUPABASE_SERVICE_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadNeedsATranscriber(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("DEEPGRAM_API_KEY", "")

	// OpenAI alone is enough.
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with OpenAI only: %v", err)
	}

	// Neither provider configured is a startup error.
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DEEPGRAM_API_KEY or OPENAI_API_KEY") {
		t.Errorf("Load with no transcriber = %v, want provider error", err)
	}
}
