package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/anna199/TeachTogether/internal/database/mongo"
	"github.com/anna199/TeachTogether/internal/entity"

	"github.com/sirupsen/logrus"
)

type registrationService struct {
	eventRepo repository.EventRepository
	cache     EventCache
	publisher LifecyclePublisher
}

func NewRegistrationService(
	eventRepo repository.EventRepository,
	cache EventCache,
	publisher LifecyclePublisher,
) RegistrationService {
	return &registrationService{
		eventRepo: eventRepo,
		cache:     orNopCache(cache),
		publisher: orNopPublisher(publisher),
	}
}

// Register appends a participant while the event has room. A missing event
// is reported before the body is validated. The authoritative capacity
// check and the append are one conditional write in the repository.
// Registering the same parent twice is allowed.
func (s *registrationService) Register(ctx context.Context, eventID string, req *entity.RegistrationRequest) (*entity.Event, error) {
	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	if current.IsFull() {
		return nil, fmt.Errorf("failed to register participant: %w", entity.ErrEventFull)
	}

	participant := req.Participant(time.Now().UTC())
	if err := entity.Validate(&participant); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.AddParticipant(ctx, eventID, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":           eventID,
		"current_enrollment": event.CurrentEnrollment,
		"max_capacity":       event.MaxCapacity,
	}).Info("Participant registered")

	notifyChanged(ctx, s.cache, s.publisher,
		eventRecord(entity.LifecycleParticipantRegistered, event, participant.ParentEmail))
	return event, nil
}

// CancelRegistration removes the first participant registered under
// parentEmail. The match is exact.
func (s *registrationService) CancelRegistration(ctx context.Context, eventID, parentEmail string) (*entity.Event, error) {
	event, err := s.eventRepo.RemoveParticipant(ctx, eventID, parentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel registration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":           eventID,
		"current_enrollment": event.CurrentEnrollment,
	}).Info("Registration cancelled")

	notifyChanged(ctx, s.cache, s.publisher,
		eventRecord(entity.LifecycleParticipantCancelled, event, parentEmail))
	return event, nil
}
