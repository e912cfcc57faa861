package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the env-derived settings the router needs.
type RouterConfig struct {
	// BackendAPIKey guards /v1 when set; empty leaves the API open (dev mode).
	BackendAPIKey string

	// CorsAllowedOrigins is a comma-separated origin list; empty means "*".
	CorsAllowedOrigins string
}

// NewRouter assembles the HTTP surface: a public health check plus the
// versioned API, with logging, panic recovery and request IDs on everything.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(cfg.CorsAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		if cfg.BackendAPIKey != "" {
			r.Use(APIKeyAuth(cfg.BackendAPIKey))
		}

		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}", h.GetProject)
		r.Get("/projects/{id}/jobs", h.GetProjectJobs)

		r.Get("/clips/{clipId}", h.GetClip)
		r.Patch("/clips/{clipId}/edit", h.UpdateClipEdit)
		r.Post("/clips/{clipId}/render", h.RenderClip)
		r.Get("/clips/{clipId}/download", h.DownloadClip)
		r.Get("/clips/{clipId}/subtitles", h.GetClipSubtitles)

		r.Get("/presets/captions", h.ListCaptionPresets)
	})

	return r
}

// corsOrigins parses the comma-separated origin list, falling back to the
// wildcard when nothing usable is configured.
func corsOrigins(configured string) []string {
	var origins []string
	for _, o := range strings.Split(configured, ",") {
		if s := strings.TrimSpace(o); s != "" {
			origins = append(origins, s)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
