package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Handler processes one message body. Returning nil acknowledges the
// message; an error leaves it on the broker for redelivery.
type Handler func(ctx context.Context, body []byte) error

type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Consumer delivers messages from queue to handler one at a time until ctx
// is cancelled.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler Handler) error
}

type Broker interface {
	Publisher
	Consumer
	Ping(ctx context.Context) error
	Close() error
}

func PublishJSON(ctx context.Context, p Publisher, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queue, err)
	}
	return p.Publish(ctx, queue, body)
}

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
