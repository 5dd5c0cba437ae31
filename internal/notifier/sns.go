package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"fileflow-backend/internal/models"
)

// SNSPublisher is the subset of *sns.Client used here.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes the classification to a topic so any number of
// subscribers (email, SQS, Lambda) can fan it out.
type SNSNotifier struct {
	client   SNSPublisher
	topicArn string
}

func NewSNSNotifier(client SNSPublisher, topicArn string) *SNSNotifier {
	return &SNSNotifier{client: client, topicArn: topicArn}
}

func NewSNSNotifierFromConfig(cfg aws.Config, topicArn string) *SNSNotifier {
	return NewSNSNotifier(sns.NewFromConfig(cfg), topicArn)
}

func (n *SNSNotifier) Channel() string {
	return models.ChannelSNS
}

type snsMessage struct {
	FileID string         `json:"file_id"`
	Status string         `json:"status"`
	Errors map[string]any `json:"errors,omitempty"`
	Text   string         `json:"text"`
}

func (n *SNSNotifier) Notify(ctx context.Context, fileID, status string, errs map[string]any) (SendResult, error) {
	if n.topicArn == "" {
		return SendResult{}, fmt.Errorf("sns: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(snsMessage{
		FileID: fileID,
		Status: status,
		Errors: errs,
		Text:   FormatMessage(fileID, status, errs),
	})
	if err != nil {
		return SendResult{}, err
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject(fileID, status)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"status": {DataType: aws.String("String"), StringValue: aws.String(status)},
		},
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("sns publish failed for topic %s: %w", n.topicArn, err)
	}
	return SendResult{MessageID: aws.ToString(out.MessageId), SentAt: time.Now().UTC()}, nil
}

// SNS subjects are limited to 100 characters.
func subject(fileID, status string) string {
	s := fmt.Sprintf("File %s: %s", fileID, status)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
