package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hivcare-api/pkg/circuitbreaker"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
)

func newBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), Config{URL: "redis://" + mr.Addr(), MaxRetries: -1})
	require.NoError(t, err)
	b := NewRedisBroker(client, logger.Nop())
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestPublishSubscribe(t *testing.T) {
	b, _ := newBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.Subscribe(ctx, "hivcare.events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "hivcare.events", []byte(`{"type":"appointment.created"}`)))

	select {
	case got := <-msgs:
		assert.JSONEq(t, `{"type":"appointment.created"}`, string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestPublish_BreakerOpensWhenRedisDown(t *testing.T) {
	b, mr := newBroker(t)
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.Error(t, b.Publish(context.Background(), "hivcare.events", []byte(`{}`)))
	}

	err := b.Publish(context.Background(), "hivcare.events", []byte(`{}`))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(context.Background(), Config{URL: "not a url"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(context.Background(), Config{URL: "redis://" + addr, MaxRetries: -1})
	assert.Error(t, err)
}
