package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/clipforge/internal/api"
	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/db"
	"github.com/bobarin/clipforge/internal/queue"
	"github.com/bobarin/clipforge/internal/services"
	"github.com/bobarin/clipforge/internal/storage"
	"github.com/bobarin/clipforge/internal/worker"
)

func main() {
	log.Println("Starting ClipForge API...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	stor := storage.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)

	handler := api.NewHandler(database, q, stor)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})
	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// The worker runs inside the same binary; deployments split API and
	// worker instances by toggling WORKER_ENABLED.
	var stopWorker context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")
		var workerCtx context.Context
		workerCtx, stopWorker = context.WithCancel(context.Background())
		go newWorker(cfg, database, q, stor).Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	server := &http.Server{Addr: ":" + cfg.APIPort, Handler: router}
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if stopWorker != nil {
		stopWorker()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// newWorker wires the processing pipeline: the ffmpeg renderer, the
// transcription provider (Deepgram preferred, Whisper fallback) and the
// Gemini analyzer.
func newWorker(cfg *config.Config, database *db.DB, q *queue.Queue, stor *storage.Storage) *worker.Worker {
	renderer := services.NewRenderer(cfg.TempDir)

	var transcriber services.Transcriber
	if cfg.DeepgramKey != "" {
		transcriber = services.NewDeepgramServiceWithOptions(cfg.DeepgramKey, cfg.TranscribeLanguage, cfg.TranscribeDiarize)
		log.Printf("Transcription provider: Deepgram (model: nova-2, language: %s)", cfg.TranscribeLanguage)
	} else {
		transcriber = services.NewOpenAIService(cfg.OpenAIKey)
		log.Println("Transcription provider: OpenAI Whisper")
	}

	analyzer := services.NewGeminiService(cfg.GeminiKey, cfg.GeminiModel)
	model := cfg.GeminiModel
	if model == "" {
		model = "default"
	}
	log.Printf("Analysis provider: Gemini (model: %s)", model)

	return worker.New(database, q, stor, transcriber, analyzer, renderer, cfg.MaxConcurrentRenders)
}
