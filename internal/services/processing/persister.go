package processing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fileflow-backend/internal/models"
)

// ResultStore records row outcomes. InsertSuccess reports whether the row was
// new; an already-known row hash is not an error.
type ResultStore interface {
	InsertFailure(ctx context.Context, fileID, errorType string, detail models.FailureDetail) error
	InsertSuccess(ctx context.Context, fileID string, row map[string]any) (bool, error)
}

type FileStatusUpdater interface {
	UpdateStatus(ctx context.Context, fileID, status string) error
}

type Persister struct {
	results ResultStore
	files   FileStatusUpdater
	logger  *zap.Logger
}

func NewPersister(results ResultStore, files FileStatusUpdater, logger *zap.Logger) *Persister {
	return &Persister{results: results, files: files, logger: logger}
}

// Persist writes failures, then successes, then the file status. Each write
// stands alone; a crash part way through is repaired by redelivery.
func (p *Persister) Persist(ctx context.Context, fileID string, c Classification) error {
	for _, f := range c.Failures {
		if err := p.results.InsertFailure(ctx, fileID, f.ErrorType, f.Detail); err != nil {
			return fmt.Errorf("insert %s failure for file %s: %w", f.ErrorType, fileID, err)
		}
	}

	inserted, duplicates := 0, 0
	for _, row := range c.Successes {
		created, err := p.results.InsertSuccess(ctx, fileID, row)
		if err != nil {
			return fmt.Errorf("insert success row for file %s: %w", fileID, err)
		}
		if created {
			inserted++
		} else {
			duplicates++
		}
	}

	if err := p.files.UpdateStatus(ctx, fileID, c.Status); err != nil {
		return fmt.Errorf("update status of file %s: %w", fileID, err)
	}

	p.logger.Info("file results persisted",
		zap.String("file_id", fileID),
		zap.String("status", c.Status),
		zap.Int("failures", len(c.Failures)),
		zap.Int("successes_inserted", inserted),
		zap.Int("successes_duplicate", duplicates),
	)
	return nil
}
