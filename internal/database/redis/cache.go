package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "event:"
	upcomingKey    = "events:upcoming"
)

// EventCache keeps read-through copies of single events and of the upcoming
// list. A miss is reported as (nil, nil).
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *EventCache) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	found, err := c.get(ctx, eventKeyPrefix+id, &event)
	if err != nil || !found {
		return nil, err
	}
	return &event, nil
}

func (c *EventCache) SetEvent(ctx context.Context, event *entity.Event) error {
	return c.set(ctx, eventKeyPrefix+event.ID.Hex(), event)
}

func (c *EventCache) GetUpcoming(ctx context.Context) ([]*entity.Event, error) {
	var events []*entity.Event
	found, err := c.get(ctx, upcomingKey, &events)
	if err != nil || !found {
		return nil, err
	}
	return events, nil
}

func (c *EventCache) SetUpcoming(ctx context.Context, events []*entity.Event) error {
	return c.set(ctx, upcomingKey, events)
}

// Invalidate drops the event entry and the upcoming list, which may embed it.
func (c *EventCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, eventKeyPrefix+id, upcomingKey).Err()
}

func (c *EventCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *EventCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
