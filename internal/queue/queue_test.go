package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	queue string
	body  []byte
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, body []byte) error {
	p.queue = queue
	p.body = body
	return nil
}

func TestPublishJSON(t *testing.T) {
	p := &recordingPublisher{}
	err := PublishJSON(context.Background(), p, "files", map[string]string{"file_id": "f1"})
	require.NoError(t, err)

	assert.Equal(t, "files", p.queue)
	assert.JSONEq(t, `{"file_id":"f1"}`, string(p.body))
}

func TestPublishJSON_MarshalError(t *testing.T) {
	err := PublishJSON(context.Background(), &recordingPublisher{}, "files", make(chan int))
	assert.Error(t, err)
}

func TestHandleWithRetry_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	handler := func(context.Context, []byte) error {
		attempts++
		if attempts < 3 {
			return errors.New("db unavailable")
		}
		return nil
	}

	p := retryPolicy{backoff: time.Millisecond, maxBackoff: 4 * time.Millisecond, maxAttempts: 5}
	res := handleWithRetry(context.Background(), []byte("x"), handler, p, zap.NewNop())
	assert.Equal(t, handled, res)
	assert.Equal(t, 3, attempts)
}

func TestHandleWithRetry_GivesUpOnPoisonMessage(t *testing.T) {
	attempts := 0
	handler := func(context.Context, []byte) error {
		attempts++
		return errors.New(`invalid input syntax for type json: unsupported Unicode escape sequence \u0000`)
	}

	p := retryPolicy{backoff: time.Millisecond, maxBackoff: 2 * time.Millisecond, maxAttempts: 4}
	res := handleWithRetry(context.Background(), []byte("x"), handler, p, zap.NewNop())
	assert.Equal(t, gaveUp, res)
	assert.Equal(t, 4, attempts)
}

func TestHandleWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	handler := func(context.Context, []byte) error {
		attempts++
		cancel()
		return errors.New("db unavailable")
	}

	p := retryPolicy{backoff: time.Hour, maxBackoff: time.Hour, maxAttempts: 5}
	res := handleWithRetry(ctx, []byte("x"), handler, p, zap.NewNop())
	assert.Equal(t, stopped, res)
	assert.Equal(t, 1, attempts)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, []byte("abc"), truncate([]byte("abc"), 5))
	assert.Equal(t, []byte("ab"), truncate([]byte("abc"), 2))
}

func TestSleep(t *testing.T) {
	assert.True(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
}
