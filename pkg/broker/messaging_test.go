package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribe(t *testing.T, b *InMemoryBroker, ctx context.Context, topic string) (<-chan []byte, *sync.WaitGroup) {
	t.Helper()
	got := make(chan []byte, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Subscribe(ctx, topic, func(p []byte) { got <- p })
	}()
	require.Eventually(t, func() bool { return b.Subscribers(topic) > 0 }, time.Second, time.Millisecond)
	return got, &wg
}

func TestPublishFansOut(t *testing.T) {
	b := NewInMemoryBroker(logrus.New(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, _ := subscribe(t, b, ctx, "live")
	require.Eventually(t, func() bool { return b.Subscribers("live") == 1 }, time.Second, time.Millisecond)
	second, _ := subscribe(t, b, ctx, "live")
	require.Eventually(t, func() bool { return b.Subscribers("live") == 2 }, time.Second, time.Millisecond)

	require.NoError(t, b.Publish(ctx, "live", []byte("hello")))

	for _, ch := range []<-chan []byte{first, second} {
		select {
		case p := <-ch:
			assert.Equal(t, "hello", string(p))
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewInMemoryBroker(logrus.New(), 0)
	assert.NoError(t, b.Publish(context.Background(), "nobody", []byte("x")))
}

func TestSubscribeEndsWithContext(t *testing.T) {
	b := NewInMemoryBroker(logrus.New(), 1)
	ctx, cancel := context.WithCancel(context.Background())

	_, wg := subscribe(t, b, ctx, "live")
	cancel()
	wg.Wait()
	assert.Equal(t, 0, b.Subscribers("live"))
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewInMemoryBroker(logrus.New(), 1)
	_, wg := subscribe(t, b, context.Background(), "live")

	require.NoError(t, b.Close())
	wg.Wait()

	assert.ErrorIs(t, b.Publish(context.Background(), "live", nil), ErrBrokerClosed)
	assert.ErrorIs(t, b.Subscribe(context.Background(), "live", func([]byte) {}), ErrBrokerClosed)
}
