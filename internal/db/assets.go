package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobarin/clipforge/internal/models"
	"github.com/google/uuid"
)

const assetColumns = `id, project_id, clip_id, type, storage_bucket,
	storage_path, content_type, byte_size, created_at`

func scanAsset(s scanner, asset *models.Asset) error {
	return s.Scan(
		&asset.ID, &asset.ProjectID, &asset.ClipID, &asset.Type,
		&asset.StorageBucket, &asset.StoragePath, &asset.ContentType,
		&asset.ByteSize, &asset.CreatedAt,
	)
}

func (db *DB) CreateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (
			id, project_id, clip_id, type, storage_bucket,
			storage_path, content_type, byte_size
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return db.QueryRowContext(
		ctx, query,
		asset.ID, asset.ProjectID, asset.ClipID, asset.Type,
		asset.StorageBucket, asset.StoragePath, asset.ContentType, asset.ByteSize,
	).Scan(&asset.CreatedAt)
}

func (db *DB) GetProjectAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE project_id = $1 ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		if err := scanAsset(rows, &asset); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// GetClipAsset returns the most recent asset of the given type for a clip.
// The render path overwrites storage objects in place, so the newest row
// is the live one.
func (db *DB) GetClipAsset(ctx context.Context, clipID uuid.UUID, assetType models.AssetType) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets
		WHERE clip_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1`

	asset := &models.Asset{}
	err := scanAsset(db.QueryRowContext(ctx, query, clipID, assetType), asset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip asset: %w", err)
	}
	return asset, nil
}
