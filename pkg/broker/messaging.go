// Package broker is an in-process publish/subscribe hub. It stands in for
// Redis pub/sub when the server runs without Redis.
package broker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Common errors
var (
	ErrBrokerClosed = errors.New("broker is closed")
	ErrQueueFull    = errors.New("queue is full")
)

const defaultQueueSize = 64

type subscriber struct {
	id    string
	queue chan []byte
}

// InMemoryBroker fans every published payload out to the current
// subscribers of its topic. Nothing is retained for late subscribers.
type InMemoryBroker struct {
	mu        sync.RWMutex
	topics    map[string]map[string]*subscriber
	logger    *logrus.Logger
	queueSize int
	closed    bool
	done      chan struct{}
}

// NewInMemoryBroker creates a new in-memory message broker
func NewInMemoryBroker(logger *logrus.Logger, queueSize int) *InMemoryBroker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &InMemoryBroker{
		topics:    make(map[string]map[string]*subscriber),
		logger:    logger,
		queueSize: queueSize,
		done:      make(chan struct{}),
	}
}

// Publish delivers payload to every subscriber of topic. A subscriber whose
// queue is full misses the message; Publish never blocks on a slow reader.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	dropped := 0
	for _, sub := range b.topics[topic] {
		select {
		case sub.queue <- payload:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.logger.WithFields(logrus.Fields{"topic": topic, "dropped": dropped}).Warn("slow subscribers skipped a message")
		return ErrQueueFull
	}
	return nil
}

// Subscribe calls callback for each message on topic until ctx ends or the
// broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, callback func([]byte)) error {
	sub, err := b.add(topic)
	if err != nil {
		return err
	}
	defer b.remove(topic, sub.id)

	for {
		select {
		case payload := <-sub.queue:
			callback(payload)
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		}
	}
}

func (b *InMemoryBroker) add(topic string) (*subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}
	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = make(map[string]*subscriber)
	}
	sub := &subscriber{id: uuid.New().String(), queue: make(chan []byte, b.queueSize)}
	b.topics[topic][sub.id] = sub
	return sub, nil
}

func (b *InMemoryBroker) remove(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
}

// Subscribers reports how many listeners a topic has.
func (b *InMemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close ends every subscription.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.topics = nil
	close(b.done)
	return nil
}
