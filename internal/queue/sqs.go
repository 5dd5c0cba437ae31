package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSAPI is the subset of *sqs.Client the broker uses.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ListQueues(ctx context.Context, in *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

type SQSConfig struct {
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	MaxMessages       int32
	// MaxAttempts is the receive count after which a failing message is
	// logged as dead and deleted.
	MaxAttempts int
}

// SQSBroker addresses queues by name. Messages are deleted once the handler
// succeeds or MaxAttempts receives have failed; otherwise they reappear once
// the visibility timeout expires.
type SQSBroker struct {
	client SQSAPI
	cfg    SQSConfig
	urls   sync.Map // queue name -> url
	logger *zap.Logger
}

func NewSQSBroker(awsCfg aws.Config, cfg SQSConfig, logger *zap.Logger) *SQSBroker {
	return NewSQSBrokerWithClient(sqs.NewFromConfig(awsCfg), cfg, logger)
}

func NewSQSBrokerWithClient(client SQSAPI, cfg SQSConfig, logger *zap.Logger) *SQSBroker {
	if cfg.WaitTimeSeconds <= 0 {
		cfg.WaitTimeSeconds = 20
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = 60
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &SQSBroker{client: client, cfg: cfg, logger: logger}
}

func (b *SQSBroker) queueURL(ctx context.Context, name string) (string, error) {
	if url, ok := b.urls.Load(name); ok {
		return url.(string), nil
	}
	out, err := b.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL for %s: %w", name, err)
	}
	url := aws.ToString(out.QueueUrl)
	b.urls.Store(name, url)
	return url, nil
}

func (b *SQSBroker) Publish(ctx context.Context, queue string, body []byte) error {
	url, err := b.queueURL(ctx, queue)
	if err != nil {
		return err
	}
	if _, err := b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(body)),
	}); err != nil {
		return fmt.Errorf("sqs publish to %s: %w", queue, err)
	}
	return nil
}

func (b *SQSBroker) Consume(ctx context.Context, queue string, handler Handler) error {
	b.logger.Info("SQS consumer started", zap.String("queue", queue))
	for {
		if ctx.Err() != nil {
			b.logger.Info("SQS consumer shutting down", zap.String("queue", queue))
			return nil
		}
		if err := b.poll(ctx, queue, handler); err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.logger.Error("SQS receive error", zap.String("queue", queue), zap.Error(err))
			sleep(ctx, 5*time.Second)
		}
	}
}

func (b *SQSBroker) poll(ctx context.Context, queue string, handler Handler) error {
	url, err := b.queueURL(ctx, queue)
	if err != nil {
		return err
	}
	out, err := b.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages: b.cfg.MaxMessages,
		WaitTimeSeconds:     b.cfg.WaitTimeSeconds,
		VisibilityTimeout:   b.cfg.VisibilityTimeout,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return err
	}

	for _, msg := range out.Messages {
		log := b.logger.With(
			zap.String("queue", queue),
			zap.String("message_id", aws.ToString(msg.MessageId)),
		)
		if msg.Body == nil {
			log.Warn("dropping SQS message without body")
			b.delete(ctx, url, msg, log)
			continue
		}
		if err := handler(ctx, []byte(*msg.Body)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if receives := receiveCount(msg); receives >= b.cfg.MaxAttempts {
				log.Error("message dropped after repeated failures",
					zap.Int("receives", receives),
					zap.ByteString("body", truncate([]byte(*msg.Body), 512)),
					zap.Error(err),
				)
				b.delete(ctx, url, msg, log)
				continue
			}
			log.Warn("message handling failed, leaving for redelivery", zap.Error(err))
			continue
		}
		b.delete(ctx, url, msg, log)
	}
	return nil
}

func (b *SQSBroker) delete(ctx context.Context, url string, msg types.Message, log *zap.Logger) {
	if _, err := b.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		log.Error("failed to delete SQS message", zap.Error(err))
	}
}

// receiveCount is 1 when SQS did not report the attribute.
func receiveCount(msg types.Message) int {
	n, err := strconv.Atoi(msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (b *SQSBroker) Ping(ctx context.Context) error {
	if _, err := b.client.ListQueues(ctx, &sqs.ListQueuesInput{MaxResults: aws.Int32(1)}); err != nil {
		return fmt.Errorf("sqs ping: %w", err)
	}
	return nil
}

func (b *SQSBroker) Close() error {
	return nil
}
