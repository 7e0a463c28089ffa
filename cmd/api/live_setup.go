package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/cache"
	"github.com/Sooraj-Rao/college-resume-project/pkg/broker"
	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// LiveSystem carries analytics events from the tracking path to websocket
// subscribers. Redis pub/sub is used when available so that several API
// instances share one feed; otherwise an in-process broker does the job.
type LiveSystem struct {
	Notifier analytics.Notifier
	Source   handlers.LiveSource
	closers  []func() error
}

// brokerNotifier publishes analytics events on the in-process broker.
type brokerNotifier struct {
	broker  *broker.InMemoryBroker
	channel string
}

func (n *brokerNotifier) Notify(ctx context.Context, event analytics.LiveEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = n.broker.Publish(ctx, n.channel, payload)
	if errors.Is(err, broker.ErrQueueFull) {
		return nil
	}
	return err
}

// SetupLiveSystem picks the transport for live analytics.
func SetupLiveSystem(redisClient *cache.RedisClient, channel string, appLogger *logger.Logger, isDevelopment bool) *LiveSystem {
	if redisClient != nil {
		appLogger.Info("Live analytics over Redis pub/sub", zap.String("channel", channel))
		return &LiveSystem{
			Notifier: cache.NewAnalyticsNotifier(redisClient, channel),
			Source:   redisClient,
		}
	}

	brokerLogger := logrus.New()
	brokerLogger.SetFormatter(&logrus.JSONFormatter{})
	if isDevelopment {
		brokerLogger.SetLevel(logrus.DebugLevel)
	}
	b := broker.NewInMemoryBroker(brokerLogger, 0)

	appLogger.Info("Live analytics over in-process broker", zap.String("channel", channel))
	return &LiveSystem{
		Notifier: &brokerNotifier{broker: b, channel: channel},
		Source:   b,
		closers:  []func() error{b.Close},
	}
}

// Shutdown ends every live subscription.
func (l *LiveSystem) Shutdown() {
	for _, c := range l.closers {
		_ = c()
	}
}
