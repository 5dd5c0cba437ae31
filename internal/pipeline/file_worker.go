package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/queue"
	"fileflow-backend/internal/services/processing"
)

type FileProcessor interface {
	ProcessFile(ctx context.Context, fileID, content string) (processing.Outcome, error)
}

// FileWorker is stage 1: it classifies submitted files and hands the verdict
// to the notification queue.
type FileWorker struct {
	processor FileProcessor
	publisher queue.Publisher
	outQueue  string
	logger    *zap.Logger
}

func NewFileWorker(processor FileProcessor, publisher queue.Publisher, outQueue string, logger *zap.Logger) *FileWorker {
	return &FileWorker{processor: processor, publisher: publisher, outQueue: outQueue, logger: logger}
}

func (w *FileWorker) Run(ctx context.Context, consumer queue.Consumer, inQueue string) error {
	return consumer.Consume(ctx, inQueue, w.Handle)
}

// Handle acknowledges a message only once its results are stored and the
// classified message is published. Bodies that cannot be decoded are dropped.
func (w *FileWorker) Handle(ctx context.Context, body []byte) error {
	var msg models.FileSubmitted
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error("dropping undecodable file message", zap.Error(err), zap.Int("bytes", len(body)))
		return nil
	}
	if msg.FileID == "" {
		w.logger.Error("dropping file message without file_id", zap.String("filename", msg.Filename))
		return nil
	}

	log := w.logger.With(zap.String("file_id", msg.FileID), zap.String("filename", msg.Filename))
	log.Info("processing file")

	outcome, err := w.processor.ProcessFile(ctx, msg.FileID, msg.FileContent)
	if err != nil {
		log.Error("file processing failed, leaving message for redelivery", zap.Error(err))
		return fmt.Errorf("process file %s: %w", msg.FileID, err)
	}

	if err := queue.PublishJSON(ctx, w.publisher, w.outQueue, outcome.Classified()); err != nil {
		log.Error("publishing classification failed", zap.Error(err))
		return fmt.Errorf("publish classification of %s: %w", msg.FileID, err)
	}

	log.Info("file classified",
		zap.String("status", outcome.Status),
		zap.Int("failed_rows", outcome.FailedRows),
		zap.Int("passed_rows", outcome.PassedRows),
	)
	return nil
}
