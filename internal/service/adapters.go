package service

import (
	"context"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"
	"github.com/anna199/TeachTogether/pkg/kafka"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// KafkaAdapter publishes lifecycle records keyed by event id, so all
// records of one event land on the same partition in order.
type KafkaAdapter struct {
	producer kafka.Producer
}

func NewKafkaAdapter(p kafka.Producer) *KafkaAdapter {
	return &KafkaAdapter{producer: p}
}

func (a *KafkaAdapter) Publish(ctx context.Context, record *entity.LifecycleRecord) error {
	if a.producer == nil {
		return nil
	}
	return a.producer.SendMessage(ctx, record.EventID, record)
}

func newLifecycleRecord(t entity.LifecycleType, eventID string) *entity.LifecycleRecord {
	return &entity.LifecycleRecord{
		ID:         uuid.NewString(),
		Type:       t,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
	}
}

func eventRecord(t entity.LifecycleType, event *entity.Event, parentEmail string) *entity.LifecycleRecord {
	record := newLifecycleRecord(t, event.ID.Hex())
	record.ParentEmail = parentEmail
	record.CurrentEnrollment = event.CurrentEnrollment
	record.MaxCapacity = event.MaxCapacity
	return record
}

// notifyChanged drops stale cache entries and emits the record. Both are
// best-effort.
func notifyChanged(ctx context.Context, cache EventCache, publisher LifecyclePublisher, record *entity.LifecycleRecord) {
	log := logrus.WithFields(logrus.Fields{"event_id": record.EventID, "type": record.Type})

	if err := cache.Invalidate(ctx, record.EventID); err != nil {
		log.WithError(err).Warn("Event cache invalidation failed")
	}
	if err := publisher.Publish(ctx, record); err != nil {
		log.WithError(err).Warn("Lifecycle publish failed")
	}
}

type nopCache struct{}

func (nopCache) GetEvent(context.Context, string) (*entity.Event, error) { return nil, nil }
func (nopCache) SetEvent(context.Context, *entity.Event) error           { return nil }
func (nopCache) GetUpcoming(context.Context) ([]*entity.Event, error)    { return nil, nil }
func (nopCache) SetUpcoming(context.Context, []*entity.Event) error      { return nil }
func (nopCache) Invalidate(context.Context, string) error                { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *entity.LifecycleRecord) error { return nil }
