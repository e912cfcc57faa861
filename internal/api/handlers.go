package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bobarin/clipforge/internal/db"
	"github.com/bobarin/clipforge/internal/editor"
	"github.com/bobarin/clipforge/internal/models"
	"github.com/bobarin/clipforge/internal/queue"
	"github.com/bobarin/clipforge/internal/services"
	"github.com/bobarin/clipforge/internal/storage"
	"github.com/bobarin/clipforge/internal/timeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Storage
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: stor,
	}
}

// CreateProject handles POST /v1/projects. The source video must already
// exist, either as an object in the storage bucket (storage_path) or at an
// external URL (source_url); processing is queued, not inline.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	// Validate
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "Title is required")
		return
	}
	parts := req.StoragePaths
	if req.StoragePath == "" && len(parts) == 1 {
		req.StoragePath = parts[0]
		parts = nil
	}
	if req.StoragePath == "" && len(parts) == 0 && req.SourceURL == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Either storage_path, storage_paths or source_url is required")
		return
	}

	// Create project
	project := &models.Project{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Title:      req.Title,
		Status:     models.ProjectStatusPending,
		SourcePath: req.StoragePath,
		SourceURL:  req.SourceURL,
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create project")
		return
	}

	// Create and enqueue job
	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: project.ID,
		Type:      models.JobTypeProcessVideo,
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create job")
		return
	}

	var enqueueErr error
	if len(parts) > 1 {
		enqueueErr = h.queue.EnqueueProcessVideoParts(r.Context(), project.ID, jobID, parts)
	} else {
		enqueueErr = h.queue.EnqueueProcessVideo(r.Context(), project.ID, jobID)
	}
	if enqueueErr != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, project)
}

// ListProjects handles GET /v1/projects
// Query params:
//   - user_id: filter by owning user
//   - limit:   max results per page (default 20, max 100)
//   - offset:  number of results to skip (default 0)
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if u := r.URL.Query().Get("user_id"); u != "" {
		parsed, err := uuid.Parse(u)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "Invalid user_id")
			return
		}
		userID = &parsed
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.db.CountProjects(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to count projects")
		return
	}

	summaries, err := h.db.ListProjectSummaries(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, models.ListProjectsResponse{
		Projects: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		respondDBError(w, err, "project")
		return
	}

	clips, err := h.db.GetProjectClips(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get clips")
		return
	}

	assets, err := h.db.GetProjectAssets(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get assets")
		return
	}

	response := models.ProjectResponse{
		Project: *project,
		Clips:   h.buildClipResponses(clips),
		Assets:  assets,
	}

	if project.SourcePath != "" {
		url := h.storage.GetPublicURL(project.SourcePath)
		response.SourceURL = &url
	}
	if project.ProxyPath != nil {
		url := h.storage.GetPublicURL(*project.ProxyPath)
		response.ProxyURL = &url
	}

	respondJSON(w, http.StatusOK, response)
}

// GetProjectJobs handles GET /v1/projects/{id}/jobs
func (h *Handler) GetProjectJobs(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid project ID")
		return
	}

	jobs, err := h.db.GetProjectJobs(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// GetClip handles GET /v1/clips/{clipId}
func (h *Handler) GetClip(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(chi.URLParam(r, "clipId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid clip ID")
		return
	}

	clip, err := h.db.GetClip(r.Context(), clipID)
	if err != nil {
		respondDBError(w, err, "clip")
		return
	}

	respondJSON(w, http.StatusOK, h.buildClipResponse(*clip))
}

// UpdateClipEdit handles PATCH /v1/clips/{clipId}/edit. The submitted config
// replaces the stored one wholesale after defaulting and validation; with
// rerender=true a render_clip job is queued as well.
func (h *Handler) UpdateClipEdit(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(chi.URLParam(r, "clipId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid clip ID")
		return
	}

	var req models.UpdateClipEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.EditConfig == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "edit_config is required")
		return
	}

	clip, err := h.db.GetClip(r.Context(), clipID)
	if err != nil {
		respondDBError(w, err, "clip")
		return
	}

	req.EditConfig.ApplyDefaults()
	if err := validateEditConfig(req.EditConfig, clip.SourceEnd-clip.SourceStart); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid edit config: "+err.Error())
		return
	}

	if err := h.db.UpdateClipEditConfig(r.Context(), clipID, req.EditConfig); err != nil {
		respondDBError(w, err, "clip")
		return
	}
	clip.EditConfig = req.EditConfig

	if req.Rerender {
		if err := h.enqueueRender(r.Context(), clip); err != nil {
			respondError(w, http.StatusInternalServerError, "internal_error", "Failed to enqueue render")
			return
		}
	}

	respondJSON(w, http.StatusOK, h.buildClipResponse(*clip))
}

// RenderClip handles POST /v1/clips/{clipId}/render
func (h *Handler) RenderClip(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(chi.URLParam(r, "clipId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid clip ID")
		return
	}

	clip, err := h.db.GetClip(r.Context(), clipID)
	if err != nil {
		respondDBError(w, err, "clip")
		return
	}

	if err := h.enqueueRender(r.Context(), clip); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to enqueue render")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// DownloadClip handles GET /v1/clips/{clipId}/download. The optional asset
// query parameter selects a rendered sidecar (thumbnail, subtitles) instead
// of the clip video; sidecar paths live only in the assets table.
func (h *Handler) DownloadClip(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(chi.URLParam(r, "clipId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid clip ID")
		return
	}

	clip, err := h.db.GetClip(r.Context(), clipID)
	if err != nil {
		respondDBError(w, err, "clip")
		return
	}

	var path string
	switch asset := r.URL.Query().Get("asset"); asset {
	case "", "video":
		if clip.OutputPath == nil {
			respondError(w, http.StatusNotFound, "not_found", "Clip not rendered")
			return
		}
		path = *clip.OutputPath
	case "thumbnail", "subtitles":
		row, err := h.db.GetClipAsset(r.Context(), clip.ID, models.AssetType(asset))
		if err != nil {
			respondDBError(w, err, "asset")
			return
		}
		path = row.StoragePath
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", "Unknown asset type: "+asset)
		return
	}

	// Get signed URL (valid for 1 hour)
	signedURL, err := h.storage.GetSignedURL(r.Context(), path, 3600)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}

	http.Redirect(w, r, signedURL, http.StatusTemporaryRedirect)
}

// GetClipSubtitles handles GET /v1/clips/{clipId}/subtitles. It rebuilds the
// clip's output timeline from the stored edit config and serves the karaoke
// ASS document for the words that survive the cuts.
func (h *Handler) GetClipSubtitles(w http.ResponseWriter, r *http.Request) {
	clipID, err := uuid.Parse(chi.URLParam(r, "clipId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid clip ID")
		return
	}

	clip, err := h.db.GetClip(r.Context(), clipID)
	if err != nil {
		respondDBError(w, err, "clip")
		return
	}

	project, err := h.db.GetProject(r.Context(), clip.ProjectID)
	if err != nil {
		respondDBError(w, err, "project")
		return
	}
	if project.Transcript == nil {
		respondError(w, http.StatusNotFound, "not_found", "Project has no transcript")
		return
	}

	cfg := clip.EditConfig
	if cfg == nil {
		cfg = models.DefaultEditConfig()
	} else {
		cfg.ApplyDefaults()
	}

	tm, err := configTimeMap(cfg, clip.SourceEnd-clip.SourceStart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to build clip timeline")
		return
	}

	words := timeline.RemapWords(project.Transcript.WordsBetween(clip.SourceStart, clip.SourceEnd), tm)
	if len(words) == 0 {
		respondError(w, http.StatusNotFound, "not_found", "No caption words in this clip")
		return
	}

	content, err := services.BuildASSSubtitles(words, cfg.Captions)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to build subtitles")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="captions.ass"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// ListCaptionPresets handles GET /v1/presets/captions
func (h *Handler) ListCaptionPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, editor.CaptionPresets())
}

// Helper methods

// enqueueRender records a render_clip job and pushes it onto the queue.
func (h *Handler) enqueueRender(ctx context.Context, clip *models.Clip) error {
	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: clip.ProjectID,
		ClipID:    &clip.ID,
		Type:      models.JobTypeRenderClip,
		Status:    models.JobStatusQueued,
	}
	if err := h.db.CreateJob(ctx, job); err != nil {
		return err
	}
	return h.queue.EnqueueRenderClip(ctx, clip.ProjectID, clip.ID, jobID)
}

// validateEditConfig rejects configs whose segments or cuts cannot form a
// playable timeline. Effect-level fields are defaulted rather than policed;
// only the timeline itself can make a render impossible.
func validateEditConfig(cfg *models.EditConfig, clipDuration float64) error {
	if len(cfg.Segments) > 0 {
		_, err := timeline.PlanSegments(cfg.Segments)
		return err
	}
	if len(cfg.Cuts) > 0 {
		_, err := timeline.PlanCuts(cfg.Cuts, clipDuration)
		return err
	}
	return nil
}

// configTimeMap rebuilds the output timeline a render of cfg would produce.
// Mirrors the renderer: segments win over cuts, and a rejected plan falls
// back to the identity pass-through instead of failing.
func configTimeMap(cfg *models.EditConfig, clipDuration float64) (*timeline.TimeMap, error) {
	switch {
	case len(cfg.Segments) > 0:
		if plan, err := timeline.PlanSegments(cfg.Segments); err == nil {
			return plan.Map, nil
		}
	case len(cfg.Cuts) > 0:
		if plan, err := timeline.PlanCuts(cfg.Cuts, clipDuration); err == nil {
			return plan.Map, nil
		}
	}
	return timeline.NewTimeMapFromCuts(nil, clipDuration)
}

func (h *Handler) buildClipResponses(clips []models.Clip) []models.ClipResponse {
	responses := make([]models.ClipResponse, len(clips))
	for i, clip := range clips {
		responses[i] = h.buildClipResponse(clip)
	}
	return responses
}

func (h *Handler) buildClipResponse(clip models.Clip) models.ClipResponse {
	response := models.ClipResponse{
		Clip: clip,
	}

	if clip.OutputPath != nil {
		url := h.storage.GetPublicURL(*clip.OutputPath)
		response.VideoURL = &url
	}
	if clip.ThumbnailPath != nil {
		url := h.storage.GetPublicURL(*clip.ThumbnailPath)
		response.ThumbnailURL = &url
	}

	return response
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// respondDBError turns a lookup failure into 404 when the row is missing
// and 500 otherwise.
func respondDBError(w http.ResponseWriter, err error, resource string) {
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", resource+" not found")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "Failed to get "+resource)
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
