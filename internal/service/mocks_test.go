package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, id string, set map[string]any) (*entity.Event, error) {
	args := m.Called(ctx, id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) ListUpcoming(ctx context.Context) ([]*entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventRepository) Search(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventRepository) AddParticipant(ctx context.Context, id string, participant entity.Participant) (*entity.Event, error) {
	args := m.Called(ctx, id, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) RemoveParticipant(ctx context.Context, id string, parentEmail string) (*entity.Event, error) {
	args := m.Called(ctx, id, parentEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPublisher records published lifecycle records.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, record *entity.LifecycleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// memEventRepository is an in-memory EventRepository with the same
// conditional register/cancel semantics as the MongoDB one.
type memEventRepository struct {
	mu     sync.Mutex
	events map[string]entity.Event
}

func newMemEventRepository() *memEventRepository {
	return &memEventRepository{events: make(map[string]entity.Event)}
}

func (r *memEventRepository) Create(_ context.Context, event *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	r.events[event.ID.Hex()] = clone(*event)
	return nil
}

func (r *memEventRepository) GetByID(_ context.Context, id string) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	out := clone(e)
	return &out, nil
}

// Update supports the top-level keys the tests patch.
func (r *memEventRepository) Update(_ context.Context, id string, set map[string]any) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	for k, v := range set {
		switch k {
		case "title":
			e.Title = v.(string)
		case "maxCapacity":
			e.MaxCapacity = v.(int)
		case "status":
			e.Status = v.(entity.EventStatus)
		}
	}
	e.LastUpdated = time.Now().UTC()
	r.events[id] = e
	out := clone(e)
	return &out, nil
}

func (r *memEventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return entity.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepository) ListUpcoming(ctx context.Context) ([]*entity.Event, error) {
	return r.Search(ctx, entity.EventFilter{})
}

func (r *memEventRepository) Search(_ context.Context, f entity.EventFilter) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Event, 0)
	for _, e := range r.events {
		if e.Status != entity.EventStatusUpcoming {
			continue
		}
		if f.Subject != "" && !strings.Contains(strings.ToLower(e.Subject), strings.ToLower(f.Subject)) {
			continue
		}
		if f.MinAge != nil && *e.SuggestedAgeRange.Max < *f.MinAge {
			continue
		}
		if f.MaxAge != nil && *e.SuggestedAgeRange.Min > *f.MaxAge {
			continue
		}
		c := clone(e)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (r *memEventRepository) AddParticipant(_ context.Context, id string, p entity.Participant) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if e.CurrentEnrollment >= e.MaxCapacity {
		return nil, entity.ErrEventFull
	}
	e.Participants = append(append([]entity.Participant{}, e.Participants...), p)
	e.CurrentEnrollment = len(e.Participants)
	r.events[id] = e
	out := clone(e)
	return &out, nil
}

func (r *memEventRepository) RemoveParticipant(_ context.Context, id string, parentEmail string) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	idx := -1
	for i, p := range e.Participants {
		if p.ParentEmail == parentEmail {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, entity.ErrRegistrationNotFound
	}
	participants := append([]entity.Participant{}, e.Participants[:idx]...)
	e.Participants = append(participants, e.Participants[idx+1:]...)
	e.CurrentEnrollment = len(e.Participants)
	r.events[id] = e
	out := clone(e)
	return &out, nil
}

func (r *memEventRepository) EnsureIndexes(context.Context) error { return nil }

func clone(e entity.Event) entity.Event {
	e.Participants = append([]entity.Participant{}, e.Participants...)
	e.RequiredMaterials = append([]string{}, e.RequiredMaterials...)
	return e
}
