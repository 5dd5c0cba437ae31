package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fileflow-backend/internal/models"
	"fileflow-backend/pkg/checksum"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// InsertFailure appends one failure entry. Entries are never deduplicated.
func (r *ResultRepository) InsertFailure(ctx context.Context, fileID, errorType string, detail models.FailureDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal failure detail: %w", err)
	}
	entry := &models.FileFailure{
		ID:          uuid.New(),
		FileID:      fileID,
		ErrorType:   errorType,
		Errors:      payload,
		ProcessedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// InsertSuccess stores a passed row unless a row with the same content hash
// already exists. It reports whether a new entry was written.
func (r *ResultRepository) InsertSuccess(ctx context.Context, fileID string, row map[string]any) (bool, error) {
	hash, err := checksum.CalculateRowHash(row)
	if err != nil {
		return false, fmt.Errorf("hash row: %w", err)
	}

	exists, err := r.RowExists(ctx, hash)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return false, fmt.Errorf("marshal row: %w", err)
	}
	entry := &models.FileSuccess{
		ID:          uuid.New(),
		FileID:      fileID,
		RowData:     payload,
		RowHash:     hash,
		ProcessedAt: time.Now().UTC(),
	}

	// A concurrent insert of the same row loses quietly.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "row_hash"}}, DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ResultRepository) RowExists(ctx context.Context, hash string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FileSuccess{}).
		Where("row_hash = ?", hash).
		Count(&n).Error
	return n > 0, err
}

func (r *ResultRepository) CountSuccessByFileIDs(ctx context.Context, fileIDs []string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FileSuccess{}).
		Where("file_id IN ?", fileIDs).
		Count(&n).Error
	return n, err
}

// CountFailureByFileIDs counts failure entries, not distinct rows.
func (r *ResultRepository) CountFailureByFileIDs(ctx context.Context, fileIDs []string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FileFailure{}).
		Where("file_id IN ?", fileIDs).
		Count(&n).Error
	return n, err
}

func (r *ResultRepository) ListFailures(ctx context.Context, fileID string) ([]models.FileFailure, error) {
	var failures []models.FileFailure
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("processed_at ASC").
		Find(&failures).Error
	return failures, err
}
