package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaConfig struct {
	Brokers []string
	GroupID string
	// Backoff between attempts at a message whose handler failed.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	// MaxAttempts bounds how often one message is handled before it is
	// logged as dead and committed.
	MaxAttempts int
}

// KafkaBroker maps each queue onto a topic. Offsets are committed once the
// handler succeeds or MaxAttempts is spent, so a message interrupted by
// shutdown is read again by the next consumer in the group.
type KafkaBroker struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaBroker(cfg KafkaConfig, logger *zap.Logger) *KafkaBroker {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.RetryBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	logger.Info("kafka broker initialized", zap.Strings("brokers", cfg.Brokers), zap.String("group_id", cfg.GroupID))
	return &KafkaBroker{cfg: cfg, writer: w, logger: logger}
}

func (b *KafkaBroker) Publish(ctx context.Context, queue string, body []byte) error {
	if err := b.writer.WriteMessages(ctx, kafka.Message{Topic: queue, Value: body}); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", queue, err)
	}
	return nil
}

func (b *KafkaBroker) Consume(ctx context.Context, queue string, handler Handler) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.cfg.Brokers,
		Topic:    queue,
		GroupID:  b.cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	b.logger.Info("kafka consumer started", zap.String("topic", queue))
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("kafka consumer stopped", zap.String("topic", queue))
				return nil
			}
			b.logger.Error("kafka fetch failed", zap.String("topic", queue), zap.Error(err))
			if !sleep(ctx, b.cfg.RetryBackoff) {
				return nil
			}
			continue
		}

		log := b.logger.With(
			zap.String("topic", queue),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		switch handleWithRetry(ctx, msg.Value, handler, b.retryPolicy(), log) {
		case stopped:
			return nil
		case gaveUp:
			log.Error("message dropped after repeated failures",
				zap.Int("attempts", b.cfg.MaxAttempts),
				zap.ByteString("body", truncate(msg.Value, 512)),
			)
		}
		if err := r.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("kafka commit failed", zap.Error(err))
		}
	}
}

type retryResult int

const (
	handled retryResult = iota
	gaveUp
	stopped
)

type retryPolicy struct {
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts int
}

func (b *KafkaBroker) retryPolicy() retryPolicy {
	return retryPolicy{backoff: b.cfg.RetryBackoff, maxBackoff: b.cfg.MaxBackoff, maxAttempts: b.cfg.MaxAttempts}
}

// handleWithRetry runs handler until it succeeds or maxAttempts is reached,
// doubling the wait after each failure up to maxBackoff.
func handleWithRetry(ctx context.Context, body []byte, handler Handler, p retryPolicy, log *zap.Logger) retryResult {
	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err := handler(ctx, body)
		if err == nil {
			return handled
		}
		if ctx.Err() != nil {
			return stopped
		}
		if attempt >= p.maxAttempts {
			log.Warn("message handling failed, giving up", zap.Int("attempt", attempt), zap.Error(err))
			return gaveUp
		}
		log.Warn("message handling failed, will retry",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if !sleep(ctx, backoff) {
			return stopped
		}
		backoff = min(backoff*2, p.maxBackoff)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// Ping dials the first reachable broker.
func (b *KafkaBroker) Ping(ctx context.Context) error {
	var lastErr error
	for _, addr := range b.cfg.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("kafka ping: %w", lastErr)
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
