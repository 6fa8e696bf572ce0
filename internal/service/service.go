package service

import (
	"context"

	"github.com/anna199/TeachTogether/internal/entity"
)

type EventService interface {
	// Queries
	GetUpcomingEvents(ctx context.Context) ([]*entity.Event, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	SearchEvents(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error)

	// Mutations
	CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, patch *entity.EventPatch) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type RegistrationService interface {
	Register(ctx context.Context, eventID string, req *entity.RegistrationRequest) (*entity.Event, error)
	CancelRegistration(ctx context.Context, eventID, parentEmail string) (*entity.Event, error)
}

type UserService interface {
	CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CheckPassword(user *entity.User, password string) error
}

// EventCache is an optional read-through cache. Misses are (nil, nil).
type EventCache interface {
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	SetEvent(ctx context.Context, event *entity.Event) error
	GetUpcoming(ctx context.Context) ([]*entity.Event, error)
	SetUpcoming(ctx context.Context, events []*entity.Event) error
	Invalidate(ctx context.Context, id string) error
}

// LifecyclePublisher emits change records for events and registrations.
type LifecyclePublisher interface {
	Publish(ctx context.Context, record *entity.LifecycleRecord) error
}
