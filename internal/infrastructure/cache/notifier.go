package cache

import (
	"context"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"go.uber.org/zap"
)

// AnalyticsNotifier invalidates the owner's cached dashboards and
// publishes the event for live subscribers.
type AnalyticsNotifier struct {
	client  *RedisClient
	channel string
}

func NewAnalyticsNotifier(client *RedisClient, channel string) *AnalyticsNotifier {
	return &AnalyticsNotifier{client: client, channel: channel}
}

func (n *AnalyticsNotifier) Notify(ctx context.Context, event analytics.LiveEvent) error {
	if err := n.client.InvalidateDashboardCache(ctx, event.OwnerID); err != nil {
		log.Warn("Failed to invalidate dashboard cache", zap.Error(err), zap.String("owner_id", event.OwnerID.String()))
	}
	return n.client.PublishEvent(ctx, n.channel, event)
}
