package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bobarin/clipforge/internal/models"
	"github.com/google/uuid"
)

const clipColumns = `id, project_id, clip_index, title, status, source_start, source_end,
	hook_score, virality, reason, edit_config, output_path, thumbnail_path,
	duration_seconds, error_message, created_at, updated_at`

func scanClip(s scanner, clip *models.Clip) error {
	var editConfig []byte
	if err := s.Scan(
		&clip.ID, &clip.ProjectID, &clip.ClipIndex, &clip.Title, &clip.Status,
		&clip.SourceStart, &clip.SourceEnd, &clip.HookScore, &clip.Virality,
		&clip.Reason, &editConfig, &clip.OutputPath, &clip.ThumbnailPath,
		&clip.DurationSeconds, &clip.ErrorMessage, &clip.CreatedAt, &clip.UpdatedAt,
	); err != nil {
		return err
	}
	return decodeDoc(editConfig, &clip.EditConfig, "edit config")
}

func (db *DB) CreateClip(ctx context.Context, clip *models.Clip) error {
	var editConfig []byte
	if clip.EditConfig != nil {
		var err error
		if editConfig, err = json.Marshal(clip.EditConfig); err != nil {
			return fmt.Errorf("failed to marshal edit config: %w", err)
		}
	}

	query := `
		INSERT INTO clips (
			id, project_id, clip_index, title, status, source_start,
			source_end, hook_score, virality, reason, edit_config
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	return db.QueryRowContext(
		ctx, query,
		clip.ID, clip.ProjectID, clip.ClipIndex, clip.Title, clip.Status,
		clip.SourceStart, clip.SourceEnd, clip.HookScore, clip.Virality,
		clip.Reason, editConfig,
	).Scan(&clip.CreatedAt, &clip.UpdatedAt)
}

func (db *DB) GetClip(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE id = $1`

	clip := &models.Clip{}
	err := scanClip(db.QueryRowContext(ctx, query, id), clip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clip %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip: %w", err)
	}
	return clip, nil
}

// GetProjectClips returns all clips for a project ordered by clip index.
func (db *DB) GetProjectClips(ctx context.Context, projectID uuid.UUID) ([]models.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE project_id = $1 ORDER BY clip_index`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clips: %w", err)
	}
	defer rows.Close()

	var clips []models.Clip
	for rows.Next() {
		var clip models.Clip
		if err := scanClip(rows, &clip); err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

func (db *DB) UpdateClipStatus(ctx context.Context, id uuid.UUID, status models.ClipStatus) error {
	query := `UPDATE clips SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

// UpdateClipEditConfig replaces the clip's edit config. Used by the edit
// endpoint, so a missing clip reports ErrNotFound.
func (db *DB) UpdateClipEditConfig(ctx context.Context, id uuid.UUID, config *models.EditConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal edit config: %w", err)
	}

	query := `UPDATE clips SET edit_config = $1, updated_at = NOW() WHERE id = $2`
	result, err := db.ExecContext(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("failed to update edit config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clip %w", ErrNotFound)
	}
	return nil
}

// UpdateClipOutput marks a clip ready and records its rendered artifacts.
// An empty thumbnail path is stored as NULL so responses skip the URL.
func (db *DB) UpdateClipOutput(ctx context.Context, id uuid.UUID, outputPath, thumbnailPath string, duration float64) error {
	query := `
		UPDATE clips
		SET status = $1, output_path = $2, thumbnail_path = NULLIF($3, ''),
		    duration_seconds = $4, error_message = NULL, updated_at = NOW()
		WHERE id = $5
	`
	_, err := db.ExecContext(ctx, query, models.ClipStatusReady, outputPath, thumbnailPath, duration, id)
	return err
}

func (db *DB) UpdateClipError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE clips
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.ClipStatusFailed, errorMessage, id)
	return err
}
