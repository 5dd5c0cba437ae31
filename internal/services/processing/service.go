package processing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fileflow-backend/internal/services/validation"
)

type Service struct {
	persister *Persister
	logger    *zap.Logger
}

func NewService(results ResultStore, files FileStatusUpdater, logger *zap.Logger) *Service {
	return &Service{
		persister: NewPersister(results, files, logger),
		logger:    logger,
	}
}

// ProcessFile validates one file and persists its classification. Unparseable
// input yields an "error" outcome and touches nothing; only store failures
// are returned as errors.
func (s *Service) ProcessFile(ctx context.Context, fileID, content string) (Outcome, error) {
	c, report, err := s.classify(content)
	if err != nil {
		s.logger.Error("file could not be processed",
			zap.String("file_id", fileID),
			zap.Error(err),
		)
		return errorOutcome(fileID, err), nil
	}

	if err := s.persister.Persist(ctx, fileID, c); err != nil {
		return Outcome{}, err
	}
	return newOutcome(fileID, c, report), nil
}

// Validate runs the validators without persisting anything.
func Validate(content string) (Classification, Report, error) {
	table, err := validation.ParseCSV(content)
	if err != nil {
		return Classification{}, Report{}, err
	}
	c, report := Classify(
		table,
		validation.ValidateTemplate(table.Columns),
		validation.ValidateNulls(table),
		validation.ValidateDataTypes(table),
	)
	return c, report, nil
}

func (s *Service) classify(content string) (c Classification, report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &validation.PipelineError{Stage: "validate", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return Validate(content)
}
