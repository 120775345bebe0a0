package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// alertKeyPrefix is the prefix for all fulfillment alert keys
const alertKeyPrefix = "rolegate:alert:fulfillment:"

// AlertDeduplicator keeps one alert per order per cooldown across instances.
type AlertDeduplicator struct {
	client *redis.Client
}

func NewAlertDeduplicator(client *redis.Client) *AlertDeduplicator {
	return &AlertDeduplicator{client: client}
}

// TryAcquire returns true when no alert for orderID was sent within ttl.
// SetNX keeps check and mark atomic.
func (d *AlertDeduplicator) TryAcquire(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	acquired, err := d.client.SetNX(ctx, alertKeyPrefix+orderID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire alert lock: %w", err)
	}
	return acquired, nil
}

// Clear drops the cooldown, used once an order is finally fulfilled.
func (d *AlertDeduplicator) Clear(ctx context.Context, orderID string) error {
	if err := d.client.Del(ctx, alertKeyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("failed to clear alert: %w", err)
	}
	return nil
}

// RemainingCooldown returns 0 when the order is not in cooldown.
func (d *AlertDeduplicator) RemainingCooldown(ctx context.Context, orderID string) (time.Duration, error) {
	ttl, err := d.client.TTL(ctx, alertKeyPrefix+orderID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown: %w", err)
	}
	// -2 missing key, -1 no TTL
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
