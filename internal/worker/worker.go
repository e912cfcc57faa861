package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bobarin/clipforge/internal/db"
	"github.com/bobarin/clipforge/internal/editor"
	"github.com/bobarin/clipforge/internal/models"
	"github.com/bobarin/clipforge/internal/queue"
	"github.com/bobarin/clipforge/internal/services"
	"github.com/bobarin/clipforge/internal/storage"
	"github.com/bobarin/clipforge/internal/timeline"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxJobAttempts caps how often a re-enqueued job may run before it is
// parked as failed.
const maxJobAttempts = 3

type Worker struct {
	db          *db.DB
	queue       *queue.Queue
	storage     *storage.Storage
	transcriber services.Transcriber
	analyzer    services.Analyzer
	renderer    *services.Renderer
	renderSem   chan struct{} // Bounds concurrent ffmpeg renders — they are CPU-bound
	uploadSem   chan struct{} // Limits concurrent Supabase uploads to prevent congestion
}

func New(
	database *db.DB,
	q *queue.Queue,
	stor *storage.Storage,
	transcriber services.Transcriber,
	analyzer services.Analyzer,
	renderer *services.Renderer,
	maxConcurrentRenders int,
) *Worker {
	if maxConcurrentRenders < 1 {
		maxConcurrentRenders = 1
	}

	return &Worker{
		db:          database,
		queue:       q,
		storage:     stor,
		transcriber: transcriber,
		analyzer:    analyzer,
		renderer:    renderer,
		renderSem:   make(chan struct{}, maxConcurrentRenders),
		uploadSem:   make(chan struct{}, 4),
	}
}

// uploadWithLimit wraps an upload call with a semaphore to prevent Supabase
// congestion.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.uploadSem <- struct{}{}:
		// Acquired slot
	case <-ctx.Done():
		return fmt.Errorf("upload cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}

// renderWithLimit wraps a clip render with the render semaphore.
func (w *Worker) renderWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.renderSem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("render cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.renderSem }()

	log.Printf("[Render] %s rendering...", label)
	return fn()
}

// Start begins processing jobs from all queues
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	// Start workers for each queue type
	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueProcessVideo, w.handleProcessVideo)
		go w.processQueue(ctx, queue.QueueRenderClip, w.handleRenderClip)
	}

	go w.logBacklog(ctx)

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

// logBacklog reports queue depths once a minute while jobs are waiting.
func (w *Worker) logBacklog(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pv, err1 := w.queue.GetQueueLength(ctx, queue.QueueProcessVideo)
			rc, err2 := w.queue.GetQueueLength(ctx, queue.QueueRenderClip)
			if err1 != nil || err2 != nil {
				continue
			}
			if pv+rc > 0 {
				log.Printf("[Worker] Queue backlog: %d process_video, %d render_clip", pv, rc)
			}
		}
	}
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, project: %s)", job.ID, job.Type, job.ProjectID)

			// The queue delivers at-least-once; a job row that already
			// succeeded or burned its attempts is not run again.
			if row, err := w.db.GetJob(ctx, job.ID); err == nil {
				if row.Status == models.JobStatusSucceeded {
					log.Printf("Job %s already succeeded, skipping", job.ID)
					continue
				}
				if row.Attempts >= maxJobAttempts {
					log.Printf("Job %s exceeded %d attempts, giving up", job.ID, maxJobAttempts)
					w.db.UpdateJobError(ctx, job.ID, fmt.Sprintf("gave up after %d attempts", row.Attempts))
					continue
				}
			}

			if err := w.db.MarkJobRunning(ctx, job.ID); err != nil {
				log.Printf("Failed to mark job running: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				w.db.UpdateJobError(ctx, job.ID, err.Error())
			} else {
				log.Printf("Job %s completed successfully", job.ID)
				w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded)
			}
		}
	}
}

// handleProcessVideo runs the intake pipeline for a fresh project: fetch the
// source, probe it, generate a proxy and a transcript in parallel, analyze
// the transcript, build an edit config per suggested clip, render them all.
func (w *Worker) handleProcessVideo(ctx context.Context, job *queue.Job) error {
	log.Printf("[Worker] Processing video for project %s", job.ProjectID)

	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusProcessing); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	workDir, err := w.renderer.WorkDir(job.ProjectID.String())
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return err
	}
	defer w.renderer.Cleanup(workDir)

	// ── Fetch the source video ──────────────────────────────────────────
	// A retried job finds the mirrored or concatenated source already in
	// the bucket via project.SourcePath, so the other branches run once.
	sourceParts := jobSourceParts(job)
	sourcePath := filepath.Join(workDir, "source.mp4")
	switch {
	case project.SourcePath != "":
		err = w.storage.Download(ctx, project.SourcePath, sourcePath)
	case len(sourceParts) > 1:
		err = w.concatSourceParts(ctx, sourceParts, workDir, sourcePath)
	case len(sourceParts) == 1:
		err = w.storage.Download(ctx, sourceParts[0], sourcePath)
	case project.SourceURL != nil && *project.SourceURL != "":
		err = w.storage.DownloadURL(ctx, *project.SourceURL, sourcePath)
	default:
		err = fmt.Errorf("project has neither storage path nor source URL")
	}
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	// Sources registered by URL or in parts are mirrored into the bucket so
	// re-renders don't depend on the external host or the parts staying up.
	if project.SourcePath == "" {
		storagePath := w.storage.GenerateStoragePath(job.ProjectID, "source.mp4")
		if err := w.uploadWithLimit(ctx, "source", func() error {
			return w.storage.UploadFile(ctx, storagePath, sourcePath, "video/mp4")
		}); err != nil {
			w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
			return fmt.Errorf("failed to mirror source: %w", err)
		}
		if err := w.createAsset(ctx, job.ProjectID, nil, models.AssetTypeSource, storagePath, "video/mp4", sourcePath); err != nil {
			return fmt.Errorf("failed to save source asset: %w", err)
		}
		if err := w.db.UpdateProjectSource(ctx, job.ProjectID, storagePath); err != nil {
			return fmt.Errorf("failed to update source path: %w", err)
		}
		project.SourcePath = storagePath
	}

	// ── Probe ───────────────────────────────────────────────────────────
	var info *services.VideoInfo
	if project.DurationSeconds != nil && project.Width != nil && project.Height != nil && project.FPS != nil {
		info = &services.VideoInfo{
			Width:    *project.Width,
			Height:   *project.Height,
			FPS:      *project.FPS,
			Duration: *project.DurationSeconds,
		}
		log.Printf("[Worker] Skipping probe, media info already stored: %dx%d @ %dfps, %.1fs", info.Width, info.Height, info.FPS, info.Duration)
	} else {
		info, err = w.renderer.Probe(ctx, sourcePath)
		if err != nil {
			w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
			return fmt.Errorf("failed to probe source: %w", err)
		}
		log.Printf("[Worker] Source probed: %dx%d @ %dfps, %.1fs", info.Width, info.Height, info.FPS, info.Duration)

		if err := w.db.UpdateProjectMedia(ctx, job.ProjectID, info.Duration, info.Width, info.Height, info.FPS); err != nil {
			return fmt.Errorf("failed to store media info: %w", err)
		}
	}

	// ── Proxy and transcript in parallel ────────────────────────────────
	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusTranscribing); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	transcript := project.Transcript

	g, gctx := errgroup.WithContext(ctx)

	// Proxy generation is best-effort; the editor UI falls back to the
	// source when no proxy exists.
	g.Go(func() error {
		if project.ProxyPath != nil {
			log.Printf("[Worker] Skipping proxy, already generated for project %s", job.ProjectID)
			return nil
		}

		proxyPath := filepath.Join(workDir, "proxy.mp4")
		if err := w.renderer.GenerateProxy(gctx, sourcePath, proxyPath); err != nil {
			log.Printf("[Worker] Proxy generation failed (non-fatal): %v", err)
			return nil
		}

		storagePath := w.storage.GenerateStoragePath(job.ProjectID, "proxy.mp4")
		if err := w.uploadWithLimit(gctx, "proxy", func() error {
			return w.storage.UploadFile(gctx, storagePath, proxyPath, "video/mp4")
		}); err != nil {
			log.Printf("[Worker] Proxy upload failed (non-fatal): %v", err)
			return nil
		}

		if err := w.createAsset(gctx, job.ProjectID, nil, models.AssetTypeProxy, storagePath, "video/mp4", proxyPath); err != nil {
			log.Printf("[Worker] Proxy asset record failed (non-fatal): %v", err)
		}
		if err := w.db.UpdateProjectProxy(gctx, job.ProjectID, storagePath); err != nil {
			log.Printf("[Worker] Proxy path update failed (non-fatal): %v", err)
		}
		return nil
	})

	if transcript == nil {
		g.Go(func() error {
			audioPath := filepath.Join(workDir, "audio.wav")
			if err := w.renderer.ExtractAudio(gctx, sourcePath, audioPath); err != nil {
				return fmt.Errorf("failed to extract audio: %w", err)
			}

			t, err := w.transcriber.Transcribe(gctx, audioPath)
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}
			transcript = t
			return nil
		})
	} else {
		log.Printf("[Worker] Skipping transcription, transcript already stored (%d words)", len(transcript.Words))
	}

	if err := g.Wait(); err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
		return err
	}

	if project.Transcript == nil {
		if err := w.db.UpdateProjectTranscript(ctx, job.ProjectID, transcript); err != nil {
			return fmt.Errorf("failed to store transcript: %w", err)
		}
	}

	// ── Analysis ────────────────────────────────────────────────────────
	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusAnalyzing); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	prefs := w.loadPreferences(ctx, project.UserID)

	analysis := project.Analysis
	if analysis == nil {
		analysis, err = w.analyzer.AnalyzeTranscript(ctx, transcript, "9:16 vertical", info.Duration, prefs)
		if err != nil {
			w.db.UpdateProjectError(ctx, job.ProjectID, err.Error())
			return fmt.Errorf("analysis failed: %w", err)
		}

		if err := w.db.UpdateProjectAnalysis(ctx, job.ProjectID, analysis); err != nil {
			return fmt.Errorf("failed to store analysis: %w", err)
		}
	} else {
		log.Printf("[Worker] Skipping analysis, already stored for project %s", job.ProjectID)
	}

	if len(analysis.SuggestedClips) == 0 {
		log.Printf("[Worker] Analysis produced no suggested clips for project %s", job.ProjectID)
		return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusReady)
	}

	// ── Create clip records with auto-edit configs ──────────────────────
	// A retried job reuses the clip rows it already created.
	existing, err := w.db.GetProjectClips(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list clips: %w", err)
	}

	var clips []*models.Clip
	if len(existing) > 0 {
		clips = make([]*models.Clip, 0, len(existing))
		for i := range existing {
			clips = append(clips, &existing[i])
		}
		log.Printf("[Worker] Reusing %d existing clips for project %s", len(clips), job.ProjectID)
	} else {
		clips = make([]*models.Clip, 0, len(analysis.SuggestedClips))
		for i, suggestion := range analysis.SuggestedClips {
			hookScore := suggestion.HookScore
			virality := suggestion.ViralityEstimate
			reason := suggestion.Reason

			clip := &models.Clip{
				ID:          uuid.New(),
				ProjectID:   job.ProjectID,
				ClipIndex:   i,
				Title:       suggestion.Title,
				Status:      models.ClipStatusSuggested,
				SourceStart: suggestion.Start,
				SourceEnd:   suggestion.End,
				HookScore:   &hookScore,
				Virality:    &virality,
				Reason:      &reason,
				EditConfig:  editor.BuildEditConfig(suggestion, analysis, prefs),
			}

			if err := w.db.CreateClip(ctx, clip); err != nil {
				return fmt.Errorf("failed to create clip: %w", err)
			}
			clips = append(clips, clip)
		}
		log.Printf("[Worker] Created %d suggested clips for project %s", len(clips), job.ProjectID)
	}

	// ── Render every suggested clip ─────────────────────────────────────
	// Renders run in parallel but bounded by the render semaphore; one
	// failed clip doesn't sink the rest.
	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusRendering); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	renderErrs := make([]error, len(clips))

	var rg errgroup.Group
	for i, clip := range clips {
		if clip.Status == models.ClipStatusReady && clip.OutputPath != nil {
			log.Printf("[Worker] Clip %d already rendered, skipping", clip.ClipIndex)
			continue
		}

		rg.Go(func() error {
			err := w.renderWithLimit(ctx, fmt.Sprintf("clip_%d", clip.ClipIndex), func() error {
				return w.renderAndPublishClip(ctx, project, clip, transcript, sourcePath)
			})
			if err != nil {
				renderErrs[i] = err
				log.Printf("[Worker] Clip %d render failed: %v", clip.ClipIndex, err)
				if dbErr := w.db.UpdateClipError(ctx, clip.ID, err.Error()); dbErr != nil {
					log.Printf("[Worker] Failed to record clip error: %v", dbErr)
				}
			}
			return nil
		})
	}
	rg.Wait()

	succeeded := 0
	for _, err := range renderErrs {
		if err == nil {
			succeeded++
		}
	}

	if succeeded == 0 {
		w.db.UpdateProjectError(ctx, job.ProjectID, "all clip renders failed")
		return fmt.Errorf("all %d clip renders failed", len(clips))
	}

	log.Printf("[Worker] Project %s ready: %d/%d clips rendered", job.ProjectID, succeeded, len(clips))
	return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusReady)
}

// handleRenderClip re-renders a single clip with its stored edit config.
func (w *Worker) handleRenderClip(ctx context.Context, job *queue.Job) error {
	if job.ClipID == nil {
		return fmt.Errorf("clip ID missing")
	}

	log.Printf("[Worker] Re-rendering clip %s for project %s", *job.ClipID, job.ProjectID)

	clip, err := w.db.GetClip(ctx, *job.ClipID)
	if err != nil {
		return fmt.Errorf("failed to get clip: %w", err)
	}

	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project.SourcePath == "" {
		return fmt.Errorf("project %s has no stored source", project.ID)
	}

	workDir, err := w.renderer.WorkDir(job.ID.String())
	if err != nil {
		return err
	}
	defer w.renderer.Cleanup(workDir)

	sourcePath := filepath.Join(workDir, "source.mp4")
	if err := w.storage.Download(ctx, project.SourcePath, sourcePath); err != nil {
		w.db.UpdateClipError(ctx, clip.ID, err.Error())
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	if err := w.renderWithLimit(ctx, fmt.Sprintf("clip_%d", clip.ClipIndex), func() error {
		return w.renderAndPublishClip(ctx, project, clip, project.Transcript, sourcePath)
	}); err != nil {
		w.db.UpdateClipError(ctx, clip.ID, err.Error())
		return fmt.Errorf("failed to render clip: %w", err)
	}

	return nil
}

// renderAndPublishClip renders one clip with its stored edit config and
// publishes the artifacts: the video itself, a thumbnail, and a karaoke
// subtitle file remapped to the output timeline actually produced.
func (w *Worker) renderAndPublishClip(ctx context.Context, project *models.Project, clip *models.Clip, transcript *models.Transcript, sourcePath string) error {
	if err := w.db.UpdateClipStatus(ctx, clip.ID, models.ClipStatusRendering); err != nil {
		return fmt.Errorf("failed to update clip status: %w", err)
	}

	workDir, err := w.renderer.WorkDir(clip.ID.String())
	if err != nil {
		return err
	}
	defer w.renderer.Cleanup(workDir)

	var words []models.Word
	if transcript != nil {
		words = transcript.Words
	}

	res, err := w.renderer.RenderClip(ctx, services.RenderRequest{
		SourcePath: sourcePath,
		ClipStart:  clip.SourceStart,
		ClipEnd:    clip.SourceEnd,
		Config:     clip.EditConfig,
		Words:      words,
		WorkDir:    workDir,
	})
	if err != nil {
		return err
	}
	if stageErr := res.StageError(); stageErr != nil {
		log.Printf("[Worker] Clip %d rendered degraded: %v", clip.ClipIndex, stageErr)
	}

	thumbPath := filepath.Join(workDir, "thumbnail.jpg")
	if err := w.renderer.Thumbnail(ctx, res.OutputPath, thumbPath, 0.5); err != nil {
		log.Printf("[Worker] Thumbnail failed (non-fatal): %v", err)
		thumbPath = ""
	}

	duration, err := w.renderer.Duration(ctx, res.OutputPath)
	if err != nil {
		log.Printf("[Worker] Could not measure output duration: %v", err)
		duration = res.TimeMap.TotalDuration()
	}

	// Subtitle sidecar, timed against the rendered timeline.
	subsPath := ""
	if clip.EditConfig != nil && clip.EditConfig.Captions != nil && clip.EditConfig.Captions.Enabled {
		clipWords := transcript.WordsBetween(clip.SourceStart, clip.SourceEnd)
		remapped := timeline.RemapWords(clipWords, res.TimeMap)
		if len(remapped) > 0 {
			subsPath = filepath.Join(workDir, "captions.ass")
			if err := services.WriteASSSubtitles(remapped, clip.EditConfig.Captions, subsPath); err != nil {
				log.Printf("[Worker] Subtitle export failed (non-fatal): %v", err)
				subsPath = ""
			}
		}
	}

	// ── Upload artifacts ────────────────────────────────────────────────
	ext := filepath.Ext(res.OutputPath)
	contentType := "video/mp4"
	if ext == ".mov" {
		contentType = "video/quicktime"
	}

	videoStoragePath := w.storage.GenerateClipStoragePath(project.ID, clip.ID, "clip"+ext)
	if err := w.uploadWithLimit(ctx, fmt.Sprintf("clip_%d_video", clip.ClipIndex), func() error {
		return w.storage.UploadFile(ctx, videoStoragePath, res.OutputPath, contentType)
	}); err != nil {
		return fmt.Errorf("failed to upload clip video: %w", err)
	}
	if err := w.createAsset(ctx, project.ID, &clip.ID, models.AssetTypeClipVideo, videoStoragePath, contentType, res.OutputPath); err != nil {
		return fmt.Errorf("failed to save video asset: %w", err)
	}

	thumbStoragePath := ""
	if thumbPath != "" {
		thumbStoragePath = w.storage.GenerateClipStoragePath(project.ID, clip.ID, "thumbnail.jpg")
		if err := w.uploadWithLimit(ctx, fmt.Sprintf("clip_%d_thumb", clip.ClipIndex), func() error {
			return w.storage.UploadFile(ctx, thumbStoragePath, thumbPath, "image/jpeg")
		}); err != nil {
			log.Printf("[Worker] Thumbnail upload failed (non-fatal): %v", err)
			thumbStoragePath = ""
		} else if err := w.createAsset(ctx, project.ID, &clip.ID, models.AssetTypeThumbnail, thumbStoragePath, "image/jpeg", thumbPath); err != nil {
			log.Printf("[Worker] Thumbnail asset record failed (non-fatal): %v", err)
		}
	}

	if subsPath != "" {
		subsStoragePath := w.storage.GenerateClipStoragePath(project.ID, clip.ID, "captions.ass")
		if err := w.uploadWithLimit(ctx, fmt.Sprintf("clip_%d_subs", clip.ClipIndex), func() error {
			return w.storage.UploadFile(ctx, subsStoragePath, subsPath, "text/plain; charset=utf-8")
		}); err != nil {
			log.Printf("[Worker] Subtitle upload failed (non-fatal): %v", err)
		} else if err := w.createAsset(ctx, project.ID, &clip.ID, models.AssetTypeSubtitles, subsStoragePath, "text/plain; charset=utf-8", subsPath); err != nil {
			log.Printf("[Worker] Subtitle asset record failed (non-fatal): %v", err)
		}
	}

	log.Printf("[Worker] Clip %d published (%.1fs, %s)", clip.ClipIndex, duration, videoStoragePath)
	return w.db.UpdateClipOutput(ctx, clip.ID, videoStoragePath, thumbStoragePath, duration)
}

func (w *Worker) loadPreferences(ctx context.Context, userID *uuid.UUID) *models.Preferences {
	if userID == nil {
		return nil
	}
	prefs, err := w.db.GetUserPreferences(ctx, *userID)
	if err != nil {
		log.Printf("[Worker] Could not load user preferences: %v", err)
		return nil
	}
	return prefs
}

func (w *Worker) createAsset(ctx context.Context, projectID uuid.UUID, clipID *uuid.UUID, assetType models.AssetType, storagePath, contentType, localPath string) error {
	asset := &models.Asset{
		ID:            uuid.New(),
		ProjectID:     projectID,
		ClipID:        clipID,
		Type:          assetType,
		StorageBucket: w.storage.Bucket,
		StoragePath:   storagePath,
		ContentType:   &contentType,
	}
	if fi, err := os.Stat(localPath); err == nil {
		size := fi.Size()
		asset.ByteSize = &size
	}
	return w.db.CreateAsset(ctx, asset)
}

// jobSourceParts extracts uploaded part paths from the job payload. The
// payload round-trips through JSON, so the slice arrives as []interface{}.
func jobSourceParts(job *queue.Job) []string {
	if job.Data == nil {
		return nil
	}
	switch v := job.Data["source_parts"].(type) {
	case []string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}
	return nil
}

// concatSourceParts downloads each uploaded part and joins them into a
// single source file.
func (w *Worker) concatSourceParts(ctx context.Context, parts []string, workDir, out string) error {
	local := make([]string, 0, len(parts))
	for i, part := range parts {
		ext := filepath.Ext(part)
		if ext == "" {
			ext = ".mp4"
		}
		dst := filepath.Join(workDir, fmt.Sprintf("part_%02d%s", i, ext))
		if err := w.storage.Download(ctx, part, dst); err != nil {
			return fmt.Errorf("failed to download part %d: %w", i, err)
		}
		local = append(local, dst)
	}

	log.Printf("[Worker] Concatenating %d source parts", len(local))
	return w.renderer.ConcatSources(ctx, local, out)
}
