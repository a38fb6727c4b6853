package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/patient-registry/pkg/circuitbreaker"
	"github.com/jwalitptl/patient-registry/pkg/logger"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
}

func TestPublish_OpensBreaker(t *testing.T) {
	b := NewWithClient(unreachableClient(), logger.Nop())
	defer b.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := b.Publish(ctx, "patient.registered", map[string]string{"k": "v"})
		assert.Error(t, err)
		assert.False(t, errors.Is(err, circuitbreaker.ErrOpen))
	}

	err := b.Publish(ctx, "patient.registered", map[string]string{"k": "v"})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestPublish_MarshalError(t *testing.T) {
	b := NewWithClient(unreachableClient(), logger.Nop())
	defer b.Close()

	assert.ErrorContains(t, b.Publish(context.Background(), "c", func() {}), "failed to marshal")
}

func TestNewRedisBroker_BadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "not-a-url"}, logger.Nop())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
