package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fileflow-backend/internal/config"
	"fileflow-backend/internal/notifier"
	"fileflow-backend/internal/queue"
	"fileflow-backend/internal/services/stats"
	"fileflow-backend/pkg/awsconfig"
)

func NewBroker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (queue.Broker, error) {
	switch cfg.Queue.Driver {
	case config.QueueDriverSQS:
		awsCfg, err := awsconfig.Load(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, err
		}
		return queue.NewSQSBroker(awsCfg, queue.SQSConfig{
			VisibilityTimeout: cfg.Queue.SQSVisibilityTimeout,
			MaxAttempts:       cfg.Queue.MaxAttempts,
		}, logger), nil
	case config.QueueDriverKafka:
		return queue.NewKafkaBroker(queue.KafkaConfig{
			Brokers:     cfg.Queue.KafkaBrokers,
			GroupID:     cfg.Queue.KafkaGroupID,
			MaxAttempts: cfg.Queue.MaxAttempts,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver %q", cfg.Queue.Driver)
	}
}

func NewNotifier(ctx context.Context, cfg *config.Config) (notifier.Notifier, error) {
	switch cfg.Notifier.Driver {
	case config.NotifierDriverSNS:
		awsCfg, err := awsconfig.Load(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			return nil, err
		}
		return notifier.NewSNSNotifierFromConfig(awsCfg, cfg.Notifier.SNSTopicARN), nil
	case config.NotifierDriverTeams:
		return notifier.NewTeamsNotifier(cfg.Notifier.TeamsWebhookURL, nil), nil
	default:
		return nil, fmt.Errorf("unsupported notifier driver %q", cfg.Notifier.Driver)
	}
}

// NewStatsCache prefers Redis and falls back to an in-process cache when
// REDIS_URL is unset or unreachable. The returned close func is never nil.
func NewStatsCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stats.Cache, func() error) {
	if cfg.RedisURL == "" {
		return stats.NewMemoryCache(), func() error { return nil }
	}
	client, err := stats.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process stats cache", zap.Error(err))
		return stats.NewMemoryCache(), func() error { return nil }
	}
	logger.Info("Connected to Redis")
	return stats.NewRedisCache(client), client.Close
}
