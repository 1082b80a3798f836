package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/metrics"
)

// publish emits a domain event. Failures are logged and never reach the caller.
func publish(ctx context.Context, log *zap.Logger, pub events.Publisher, eventType, key string, data interface{}) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, eventType, key, data)
	metrics.RecordEventPublished(eventType, err == nil)
	if err != nil {
		log.Warn("failed to publish event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}
