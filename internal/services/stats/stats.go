package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"fileflow-backend/internal/repository"
)

const dateLayout = "2006-01-02"

type FileStats struct {
	TotalFiles    int64   `json:"total_files"`
	Passed        int64   `json:"passed"`
	Failed        int64   `json:"failed"`
	PassedPercent float64 `json:"passed_percent"`
	FailedPercent float64 `json:"failed_percent"`
}

type RowStats struct {
	Filename      string  `json:"filename"`
	Date          string  `json:"date"`
	TotalRows     int64   `json:"total_rows"`
	Passed        int64   `json:"passed"`
	Failed        int64   `json:"failed"`
	PassedPercent float64 `json:"passed_percent"`
	FailedPercent float64 `json:"failed_percent"`
}

// Percent is part/total as a percentage rounded to 2 decimals, 0 when total is 0.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func ComputeFileStats(total, passed, failed int64) FileStats {
	return FileStats{
		TotalFiles:    total,
		Passed:        passed,
		Failed:        failed,
		PassedPercent: Percent(passed, total),
		FailedPercent: Percent(failed, total),
	}
}

// ComputeRowStats treats the row total as passed + failed.
func ComputeRowStats(filename, date string, passed, failed int64) RowStats {
	total := passed + failed
	return RowStats{
		Filename:      filename,
		Date:          date,
		TotalRows:     total,
		Passed:        passed,
		Failed:        failed,
		PassedPercent: Percent(passed, total),
		FailedPercent: Percent(failed, total),
	}
}

type FileCounter interface {
	CountByProcessed(ctx context.Context) (repository.ProcessedCounts, error)
	IDsByFilename(ctx context.Context, filename string, day *time.Time) ([]string, error)
	DailyCounts(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error)
}

type RowCounter interface {
	CountSuccessByFileIDs(ctx context.Context, fileIDs []string) (int64, error)
	CountFailureByFileIDs(ctx context.Context, fileIDs []string) (int64, error)
}

// Service answers stats queries, serving repeated ones from cache for ttl.
type Service struct {
	files  FileCounter
	rows   RowCounter
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(files FileCounter, rows RowCounter, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{files: files, rows: rows, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) FileStats(ctx context.Context) (FileStats, error) {
	var out FileStats
	if s.cached(ctx, "stats:files", &out) {
		return out, nil
	}

	counts, err := s.files.CountByProcessed(ctx)
	if err != nil {
		return out, fmt.Errorf("count files: %w", err)
	}
	out = ComputeFileStats(counts.Total, counts.Passed, counts.Failed)
	s.store(ctx, "stats:files", out)
	return out, nil
}

// RowStats aggregates row outcomes over every file named filename, optionally
// restricted to files processed on day.
func (s *Service) RowStats(ctx context.Context, filename string, day *time.Time) (RowStats, error) {
	date := ""
	if day != nil {
		date = day.Format(dateLayout)
	}
	key := fmt.Sprintf("stats:rows:%s:%s", filename, date)

	var out RowStats
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	ids, err := s.files.IDsByFilename(ctx, filename, day)
	if err != nil {
		return out, fmt.Errorf("find files named %q: %w", filename, err)
	}
	if len(ids) == 0 {
		return ComputeRowStats(filename, date, 0, 0), nil
	}

	passed, err := s.rows.CountSuccessByFileIDs(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("count passed rows: %w", err)
	}
	failed, err := s.rows.CountFailureByFileIDs(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("count failed rows: %w", err)
	}

	out = ComputeRowStats(filename, date, passed, failed)
	s.store(ctx, key, out)
	return out, nil
}

// DailyCounts reports success and failure counts per day, from and to inclusive.
func (s *Service) DailyCounts(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	key := fmt.Sprintf("stats:daily:%s:%s", from.Format(dateLayout), to.Format(dateLayout))

	var out []repository.DailyCount
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	out, err := s.files.DailyCounts(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("count files per day: %w", err)
	}
	if out == nil {
		out = []repository.DailyCount{}
	}
	s.store(ctx, key, out)
	return out, nil
}

// Cache errors degrade to a direct query and are only logged.
func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
