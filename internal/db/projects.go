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

const projectColumns = `id, user_id, title, status, source_path, source_url,
	duration_seconds, width, height, fps, proxy_path,
	transcript, analysis, error_message, created_at, updated_at`

func scanProject(s scanner, p *models.Project) error {
	var transcript, analysis []byte
	if err := s.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Status, &p.SourcePath, &p.SourceURL,
		&p.DurationSeconds, &p.Width, &p.Height, &p.FPS, &p.ProxyPath,
		&transcript, &analysis, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return err
	}
	if err := decodeDoc(transcript, &p.Transcript, "transcript"); err != nil {
		return err
	}
	return decodeDoc(analysis, &p.Analysis, "analysis")
}

func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (
			id, user_id, title, status, source_path, source_url
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return db.QueryRowContext(
		ctx, query,
		project.ID, project.UserID, project.Title, project.Status,
		project.SourcePath, project.SourceURL,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project := &models.Project{}
	err := scanProject(db.QueryRowContext(ctx, query, id), project)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjectSummaries returns projects ordered by creation date (newest
// first) with per-project clip counts, without the transcript/analysis
// payloads. Supports optional user filter, limit, and offset for
// pagination.
func (db *DB) ListProjectSummaries(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]models.ProjectSummary, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseSelect := `
		SELECT
			p.id, p.title, p.status, p.duration_seconds, p.error_message,
			p.created_at, p.updated_at,
			COUNT(c.id) AS clip_count,
			COUNT(c.id) FILTER (WHERE c.status = 'ready') AS ready_clip_count
		FROM projects p
		LEFT JOIN clips c ON c.project_id = p.id
	`
	groupOrder := ` GROUP BY p.id ORDER BY p.created_at DESC`

	if userID != nil {
		query := baseSelect + ` WHERE p.user_id = $1` + groupOrder + ` LIMIT $2 OFFSET $3`
		rows, err = db.QueryContext(ctx, query, *userID, limit, offset)
	} else {
		query := baseSelect + groupOrder + ` LIMIT $1 OFFSET $2`
		rows, err = db.QueryContext(ctx, query, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.ProjectSummary
	for rows.Next() {
		var p models.ProjectSummary
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Status, &p.DurationSeconds, &p.ErrorMessage,
			&p.CreatedAt, &p.UpdatedAt, &p.ClipCount, &p.ReadyClipCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountProjects returns the total number of projects, optionally filtered by user.
func (db *DB) CountProjects(ctx context.Context, userID *uuid.UUID) (int, error) {
	var count int
	if userID != nil {
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE user_id = $1`, *userID).Scan(&count)
		return count, err
	}
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	query := `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateProjectError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE projects
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.ProjectStatusFailed, errorMessage, id)
	return err
}

// UpdateProjectMedia stores the probed source properties after download.
func (db *DB) UpdateProjectMedia(ctx context.Context, id uuid.UUID, duration float64, width, height, fps int) error {
	query := `
		UPDATE projects
		SET duration_seconds = $1, width = $2, height = $3, fps = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := db.ExecContext(ctx, query, duration, width, height, fps, id)
	return err
}

func (db *DB) UpdateProjectProxy(ctx context.Context, id uuid.UUID, proxyPath string) error {
	query := `UPDATE projects SET proxy_path = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, proxyPath, id)
	return err
}

// UpdateProjectSource records the bucket path of a source that was mirrored
// in from an external URL.
func (db *DB) UpdateProjectSource(ctx context.Context, id uuid.UUID, sourcePath string) error {
	query := `UPDATE projects SET source_path = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, sourcePath, id)
	return err
}

func (db *DB) UpdateProjectTranscript(ctx context.Context, id uuid.UUID, transcript *models.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	query := `UPDATE projects SET transcript = $1, updated_at = NOW() WHERE id = $2`
	_, err = db.ExecContext(ctx, query, data, id)
	return err
}

func (db *DB) UpdateProjectAnalysis(ctx context.Context, id uuid.UUID, analysis *models.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `UPDATE projects SET analysis = $1, updated_at = NOW() WHERE id = $2`
	_, err = db.ExecContext(ctx, query, data, id)
	return err
}
