package repository

import (
	"context"

	"github.com/anna199/TeachTogether/internal/entity"
)

const (
	EventsCollection = "events"
	UsersCollection  = "users"
)

type EventRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	Update(ctx context.Context, id string, set map[string]any) (*entity.Event, error)
	Delete(ctx context.Context, id string) error

	// Query operations
	ListUpcoming(ctx context.Context) ([]*entity.Event, error)
	Search(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error)

	// Registration operations, each a single conditional write
	AddParticipant(ctx context.Context, id string, participant entity.Participant) (*entity.Event, error)
	RemoveParticipant(ctx context.Context, id string, parentEmail string) (*entity.Event, error)

	EnsureIndexes(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)

	EnsureIndexes(ctx context.Context) error
}
