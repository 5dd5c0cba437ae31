package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fileflow-backend/internal/models"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.FileRecord) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// GetByID returns gorm.ErrRecordNotFound when the file is unknown.
func (r *FileRepository) GetByID(ctx context.Context, fileID string) (*models.FileRecord, error) {
	var file models.FileRecord
	if err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns every file, newest id first.
func (r *FileRepository) List(ctx context.Context) ([]models.FileRecord, error) {
	var files []models.FileRecord
	err := r.db.WithContext(ctx).Order("file_id DESC").Find(&files).Error
	return files, err
}

func (r *FileRepository) ListByProcessed(ctx context.Context, processed bool) ([]models.FileRecord, error) {
	var files []models.FileRecord
	err := r.db.WithContext(ctx).Where("processed = ?", processed).Find(&files).Error
	return files, err
}

// UpdateStatus is last-write-wins: any status other than success marks the
// file as failed.
func (r *FileRepository) UpdateStatus(ctx context.Context, fileID, status string) error {
	return r.db.WithContext(ctx).Model(&models.FileRecord{}).
		Where("file_id = ?", fileID).
		Updates(map[string]interface{}{
			"processed":    status == models.StatusSuccess,
			"processed_at": time.Now().UTC(),
		}).Error
}

type ProcessedCounts struct {
	Total  int64
	Passed int64
	Failed int64
}

type processedRow struct {
	Processed *bool
	Count     int64
}

// CountByProcessed counts all files; pending files add to Total only.
func (r *FileRepository) CountByProcessed(ctx context.Context) (ProcessedCounts, error) {
	var counts ProcessedCounts
	var rows []processedRow

	err := r.db.WithContext(ctx).Model(&models.FileRecord{}).
		Select("processed, COUNT(*) as count").
		Group("processed").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, row := range rows {
		counts.Total += row.Count
		switch {
		case row.Processed == nil:
		case *row.Processed:
			counts.Passed += row.Count
		default:
			counts.Failed += row.Count
		}
	}
	return counts, nil
}

// IDsByFilename returns the ids of files named filename, optionally limited
// to those processed on the given UTC day.
func (r *FileRepository) IDsByFilename(ctx context.Context, filename string, day *time.Time) ([]string, error) {
	var ids []string
	query := r.db.WithContext(ctx).Model(&models.FileRecord{}).Where("filename = ?", filename)
	if day != nil {
		start := day.UTC().Truncate(24 * time.Hour)
		query = query.Where("processed_at >= ? AND processed_at < ?", start, start.Add(24*time.Hour))
	}
	err := query.Pluck("file_id", &ids).Error
	return ids, err
}

type DailyCount struct {
	Date         string `json:"date" gorm:"column:day"`
	SuccessCount int64  `json:"success_count"`
	FailureCount int64  `json:"failure_count"`
}

// DailyCounts groups processed files by UTC day in [from, to).
func (r *FileRepository) DailyCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.WithContext(ctx).Model(&models.FileRecord{}).
		Select("TO_CHAR(processed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, " +
			"SUM(CASE WHEN processed THEN 1 ELSE 0 END) AS success_count, " +
			"SUM(CASE WHEN NOT processed THEN 1 ELSE 0 END) AS failure_count").
		Where("processed_at >= ? AND processed_at < ?", from, to).
		Group("day").
		Order("day").
		Scan(&rows).Error
	return rows, err
}
