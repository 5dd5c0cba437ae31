package pipeline

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/notifier"
	"fileflow-backend/internal/queue"
	"fileflow-backend/internal/services/processing"
)

var notifiedStages = []string{processing.StageTemplate, processing.StageNullCheck, processing.StageDataType}

type NotificationLogStore interface {
	Save(ctx context.Context, entry *models.NotificationLog) error
}

// NotificationWorker is stage 2. Delivery is best effort: every message is
// acknowledged whatever the notifier returns.
type NotificationWorker struct {
	notifier notifier.Notifier
	logs     NotificationLogStore
	logger   *zap.Logger
}

func NewNotificationWorker(n notifier.Notifier, logs NotificationLogStore, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{notifier: n, logs: logs, logger: logger}
}

func (w *NotificationWorker) Run(ctx context.Context, consumer queue.Consumer, inQueue string) error {
	return consumer.Consume(ctx, inQueue, w.Handle)
}

func (w *NotificationWorker) Handle(ctx context.Context, body []byte) error {
	var msg models.FileClassified
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error("dropping undecodable classified message", zap.Error(err))
		return nil
	}
	if msg.FileID == "" {
		msg.FileID = "Unknown"
	}
	if msg.Status == "" {
		msg.Status = "Unknown"
	}

	errs := make(map[string]any)
	for _, stage := range notifiedStages {
		if v, ok := msg.Errors[stage]; ok {
			errs[stage] = v
		}
	}

	entry := &models.NotificationLog{
		FileID:     msg.FileID,
		FileStatus: msg.Status,
		Channel:    w.notifier.Channel(),
		Status:     models.NotificationSent,
	}

	res, err := w.notifier.Notify(ctx, msg.FileID, msg.Status, errs)
	if err != nil {
		entry.Status = models.NotificationFailed
		entry.Error = err.Error()
		w.logger.Warn("notification not delivered",
			zap.String("file_id", msg.FileID),
			zap.String("channel", entry.Channel),
			zap.Error(err),
		)
	} else {
		entry.MessageID = res.MessageID
		w.logger.Info("notification sent",
			zap.String("file_id", msg.FileID),
			zap.String("channel", entry.Channel),
			zap.String("status", msg.Status),
		)
	}

	if w.logs != nil {
		if err := w.logs.Save(ctx, entry); err != nil {
			w.logger.Error("failed to record notification", zap.String("file_id", msg.FileID), zap.Error(err))
		}
	}
	return nil
}
