package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/anna199/TeachTogether/internal/database/mongo"
	"github.com/anna199/TeachTogether/internal/entity"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type eventService struct {
	eventRepo repository.EventRepository
	cache     EventCache
	publisher LifecyclePublisher
}

// NewEventService creates a new instance of EventService. cache and
// publisher may be nil.
func NewEventService(
	eventRepo repository.EventRepository,
	cache EventCache,
	publisher LifecyclePublisher,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		cache:     orNopCache(cache),
		publisher: orNopPublisher(publisher),
	}
}

func (s *eventService) GetUpcomingEvents(ctx context.Context) ([]*entity.Event, error) {
	if cached, err := s.cache.GetUpcoming(ctx); err != nil {
		logrus.WithError(err).Warn("Upcoming events cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	events, err := s.eventRepo.ListUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	if err := s.cache.SetUpcoming(ctx, events); err != nil {
		logrus.WithError(err).Warn("Upcoming events cache write failed")
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	if cached, err := s.cache.GetEvent(ctx, id); err != nil {
		logrus.WithError(err).WithField("event_id", id).Warn("Event cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := s.cache.SetEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("event_id", id).Warn("Event cache write failed")
	}
	return event, nil
}

func (s *eventService) SearchEvents(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return events, nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	event.ApplyDefaults()
	if err := entity.Validate(event); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event.ID = bson.ObjectID{}
	event.CreatedAt = now
	event.LastUpdated = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	notifyChanged(ctx, s.cache, s.publisher, eventRecord(entity.LifecycleEventCreated, event, ""))
	return event, nil
}

// UpdateEvent merges patch into the stored event, validates the result and
// writes only the patched paths. currentEnrollment is taken as given.
func (s *eventService) UpdateEvent(ctx context.Context, id string, patch *entity.EventPatch) (*entity.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if patch.Participants != nil {
		now := time.Now().UTC()
		for i := range *patch.Participants {
			if (*patch.Participants)[i].RegisteredAt.IsZero() {
				(*patch.Participants)[i].RegisteredAt = now
			}
		}
	}

	merged := *existing
	patch.Apply(&merged)
	if err := entity.Validate(&merged); err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, id, patch.SetFields())
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	notifyChanged(ctx, s.cache, s.publisher, eventRecord(entity.LifecycleEventUpdated, updated, ""))
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	notifyChanged(ctx, s.cache, s.publisher, newLifecycleRecord(entity.LifecycleEventDeleted, id))
	return nil
}

func orNopCache(c EventCache) EventCache {
	if c == nil {
		return nopCache{}
	}
	return c
}

func orNopPublisher(p LifecyclePublisher) LifecyclePublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
