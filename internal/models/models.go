package models

import (
	"time"

	"github.com/google/uuid"
)

// Enums
type ProjectStatus string

const (
	ProjectStatusPending      ProjectStatus = "pending"
	ProjectStatusProcessing   ProjectStatus = "processing"
	ProjectStatusTranscribing ProjectStatus = "transcribing"
	ProjectStatusAnalyzing    ProjectStatus = "analyzing"
	ProjectStatusRendering    ProjectStatus = "rendering"
	ProjectStatusReady        ProjectStatus = "ready"
	ProjectStatusFailed       ProjectStatus = "failed"
)

type ClipStatus string

const (
	ClipStatusSuggested ClipStatus = "suggested"
	ClipStatusRendering ClipStatus = "rendering"
	ClipStatusReady     ClipStatus = "ready"
	ClipStatusFailed    ClipStatus = "failed"
)

type AssetType string

const (
	AssetTypeSource    AssetType = "source"
	AssetTypeProxy     AssetType = "proxy"
	AssetTypeClipVideo AssetType = "clip_video"
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeSubtitles AssetType = "subtitles"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type JobType string

const (
	JobTypeProcessVideo JobType = "process_video"
	JobTypeRenderClip   JobType = "render_clip"
)

// Models

type User struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	DisplayName *string      `json:"display_name,omitempty"`
	Plan        *string      `json:"plan,omitempty"` // "free", "pro", "enterprise"
	Preferences *Preferences `json:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Preferences steer the auto-editor when it builds edit configs for
// suggested clips.
type Preferences struct {
	ZoomIntensity       string `json:"zoomIntensity,omitempty"`       // subtle|medium|aggressive
	DefaultCaptionStyle string `json:"defaultCaptionStyle,omitempty"` // hormozi|minimal|karaoke|bold
	CaptionFont         string `json:"captionFont,omitempty"`
	CaptionColor        string `json:"captionColor,omitempty"`
}

// Project is one uploaded long-form source video and everything derived
// from it: proxy, transcript, analysis, and suggested clips.
type Project struct {
	ID              uuid.UUID     `json:"id"`
	UserID          *uuid.UUID    `json:"user_id,omitempty"`
	Title           string        `json:"title"`
	Status          ProjectStatus `json:"status"`
	SourcePath      string        `json:"source_path"`          // storage path of the uploaded source
	SourceURL       *string       `json:"source_url,omitempty"` // external URL the source was pulled from, if any
	DurationSeconds *float64      `json:"duration_seconds,omitempty"`
	Width           *int          `json:"width,omitempty"`
	Height          *int          `json:"height,omitempty"`
	FPS             *int          `json:"fps,omitempty"`
	ProxyPath       *string       `json:"proxy_path,omitempty"`
	Transcript      *Transcript   `json:"transcript,omitempty"`
	Analysis        *Analysis     `json:"analysis,omitempty"`
	ErrorMessage    *string       `json:"error_message,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Clip is one suggested or rendered short-form clip cut from a project.
// SourceStart/SourceEnd are the clip window in source seconds; the edit
// config's times are relative to that window.
type Clip struct {
	ID              uuid.UUID   `json:"id"`
	ProjectID       uuid.UUID   `json:"project_id"`
	ClipIndex       int         `json:"clip_index"`
	Title           string      `json:"title"`
	Status          ClipStatus  `json:"status"`
	SourceStart     float64     `json:"source_start"`
	SourceEnd       float64     `json:"source_end"`
	HookScore       *float64    `json:"hook_score,omitempty"`
	Virality        *string     `json:"virality,omitempty"` // low|medium|high
	Reason          *string     `json:"reason,omitempty"`
	EditConfig      *EditConfig `json:"edit_config,omitempty"`
	OutputPath      *string     `json:"output_path,omitempty"`
	ThumbnailPath   *string     `json:"thumbnail_path,omitempty"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty"` // rendered output duration
	ErrorMessage    *string     `json:"error_message,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type Asset struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	ClipID        *uuid.UUID `json:"clip_id,omitempty"`
	Type          AssetType  `json:"type"`
	StorageBucket string     `json:"storage_bucket"`
	StoragePath   string     `json:"storage_path"`
	ContentType   *string    `json:"content_type,omitempty"`
	ByteSize      *int64     `json:"byte_size,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Job struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ClipID       *uuid.UUID `json:"clip_id,omitempty"`
	Type         JobType    `json:"type"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DTOs for API responses
type ProjectResponse struct {
	Project
	Clips     []ClipResponse `json:"clips,omitempty"`
	Assets    []Asset        `json:"assets,omitempty"`
	SourceURL *string        `json:"source_download_url,omitempty"`
	ProxyURL  *string        `json:"proxy_url,omitempty"`
}

type ClipResponse struct {
	Clip
	VideoURL     *string `json:"video_url,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// ProjectSummary is a lightweight DTO for the list endpoint — no clips
// array, no transcript/analysis payloads.
type ProjectSummary struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Status          ProjectStatus `json:"status"`
	DurationSeconds *float64      `json:"duration_seconds,omitempty"`
	ClipCount       int           `json:"clip_count"`
	ReadyClipCount  int           `json:"ready_clip_count"`
	ErrorMessage    *string       `json:"error_message,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type ListProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type CreateProjectRequest struct {
	Title        string     `json:"title"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	StoragePath  string     `json:"storage_path,omitempty"`  // already-uploaded source object
	StoragePaths []string   `json:"storage_paths,omitempty"` // multi-part upload, concatenated by the worker
	SourceURL    *string    `json:"source_url,omitempty"`    // or a URL for the worker to fetch
}

// UpdateClipEditRequest replaces a clip's edit config. When Rerender is set
// the clip is queued for rendering immediately.
type UpdateClipEditRequest struct {
	EditConfig *EditConfig `json:"edit_config"`
	Rerender   bool        `json:"rerender,omitempty"`
}

// CaptionPreset is a named caption styling bundle exposed by the presets
// endpoint and applied by the auto-editor.
type CaptionPreset struct {
	Name            string `json:"name"`
	FontSize        string `json:"fontSize"`
	PrimaryColor    string `json:"primaryColor"`
	HighlightColor  string `json:"highlightColor"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Position        string `json:"position"`
	MaxWordsPerLine int    `json:"maxWordsPerLine"`
	Animation       string `json:"animation"`
}
