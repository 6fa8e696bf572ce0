package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) GetUpcomingEvents(ctx context.Context) ([]*entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventService) SearchEvents(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventService) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, id string, patch *entity.EventPatch) (*entity.Event, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, eventID string, req *entity.RegistrationRequest) (*entity.Event, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockRegistrationService) CancelRegistration(ctx context.Context, eventID, parentEmail string) (*entity.Event, error) {
	args := m.Called(ctx, eventID, parentEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(events *MockEventService, registrations *MockRegistrationService, pinger Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitRoutes(
		NewEventHandler(events),
		NewRegistrationHandler(registrations),
		NewHealthHandler(pinger),
		5*time.Second,
	)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestEventRoutes(t *testing.T) {
	id := bson.NewObjectID()
	event := &entity.Event{ID: id, Title: "Paper circuits", MaxCapacity: 3}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(events *MockEventService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:   "list upcoming",
			method: http.MethodGet,
			path:   "/api/events",
			setup: func(events *MockEventService) {
				events.On("GetUpcomingEvents", mock.Anything).Return([]*entity.Event{event}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get existing",
			method: http.MethodGet,
			path:   "/api/events/" + id.Hex(),
			setup: func(events *MockEventService) {
				events.On("GetEvent", mock.Anything, id.Hex()).Return(event, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			path:   "/api/events/nope",
			setup: func(events *MockEventService) {
				events.On("GetEvent", mock.Anything, "nope").Return(nil, fmt.Errorf("failed to get event: %w", entity.ErrEventNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Event not found",
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/events",
			body:   `{"title":"Paper circuits","maxCapacity":3,"dateTime":"2030-05-01T10:00:00Z"}`,
			setup: func(events *MockEventService) {
				events.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
					return e.Title == "Paper circuits" && e.MaxCapacity == 3
				})).Return(event, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create with malformed json",
			method:         http.MethodPost,
			path:           "/api/events",
			body:           `{"title":`,
			setup:          func(events *MockEventService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request body",
		},
		{
			name:   "create with validation failure",
			method: http.MethodPost,
			path:   "/api/events",
			body:   `{}`,
			setup: func(events *MockEventService) {
				events.On("CreateEvent", mock.Anything, mock.Anything).
					Return(nil, entity.NewValidationError("title", "required", "title is required"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed: title is required",
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/api/events/" + id.Hex(),
			body:   `{"title":"New Title"}`,
			setup: func(events *MockEventService) {
				events.On("UpdateEvent", mock.Anything, id.Hex(), mock.MatchedBy(func(p *entity.EventPatch) bool {
					return p.Title != nil && *p.Title == "New Title" && p.Subject == nil
				})).Return(event, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/events/" + id.Hex(),
			setup: func(events *MockEventService) {
				events.On("DeleteEvent", mock.Anything, id.Hex()).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Event deleted successfully",
		},
		{
			name:   "store failure is hidden",
			method: http.MethodGet,
			path:   "/api/events",
			setup: func(events *MockEventService) {
				events.On("GetUpcomingEvents", mock.Anything).Return(nil, errors.New("server selection timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Something went wrong!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := new(MockEventService)
			tt.setup(events)
			router := newTestRouter(events, new(MockRegistrationService), stubPinger{})

			w := doRequest(router, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decodeError(t, w).Message)
			}
			events.AssertExpectations(t)
		})
	}
}

func TestValidationErrorBodyListsViolations(t *testing.T) {
	events := new(MockEventService)
	events.On("CreateEvent", mock.Anything, mock.Anything).Return(nil, &entity.ValidationError{
		Violations: []entity.FieldViolation{
			{Field: "title", Rule: "required", Message: "title is required"},
			{Field: "location.city", Rule: "required", Message: "location.city is required"},
		},
	})
	router := newTestRouter(events, new(MockRegistrationService), stubPinger{})

	w := doRequest(router, http.MethodPost, "/api/events", `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "location.city", resp.Errors[1].Field)
}

func TestSearchRoute(t *testing.T) {
	t.Run("parses parameters", func(t *testing.T) {
		events := new(MockEventService)
		start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		events.On("SearchEvents", mock.Anything, mock.MatchedBy(func(f entity.EventFilter) bool {
			return f.Subject == "math" && f.City == "" &&
				f.MinAge != nil && *f.MinAge == 5 &&
				f.MaxAge != nil && *f.MaxAge == 8 &&
				f.StartDate != nil && f.StartDate.Equal(start) &&
				f.EndDate == nil
		})).Return([]*entity.Event{}, nil)
		router := newTestRouter(events, new(MockRegistrationService), stubPinger{})

		w := doRequest(router, http.MethodGet, "/api/events/search/filter?subject=math&minAge=5&maxAge=8&startDate=2030-01-01", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		events.AssertExpectations(t)
	})

	t.Run("rejects unparseable values", func(t *testing.T) {
		for _, query := range []string{"minAge=five", "maxAge=1.5", "startDate=yesterday"} {
			events := new(MockEventService)
			router := newTestRouter(events, new(MockRegistrationService), stubPinger{})

			w := doRequest(router, http.MethodGet, "/api/events/search/filter?"+query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code, query)
			assert.Len(t, decodeError(t, w).Errors, 1, query)
			events.AssertNotCalled(t, "SearchEvents", mock.Anything, mock.Anything)
		}
	})
}

func TestRegistrationRoutes(t *testing.T) {
	id := bson.NewObjectID().Hex()
	event := &entity.Event{MaxCapacity: 1, CurrentEnrollment: 1}

	t.Run("register", func(t *testing.T) {
		registrations := new(MockRegistrationService)
		registrations.On("Register", mock.Anything, id, mock.MatchedBy(func(r *entity.RegistrationRequest) bool {
			return r.ParentEmail == "a@example.com" && r.ChildAge != nil && *r.ChildAge == 7
		})).Return(event, nil)
		router := newTestRouter(new(MockEventService), registrations, stubPinger{})

		w := doRequest(router, http.MethodPost, "/api/events/"+id+"/register",
			`{"parentName":"A","parentEmail":"a@example.com","parentWechatId":"aw","childName":"K","childAge":7}`)

		assert.Equal(t, http.StatusOK, w.Code)
		registrations.AssertExpectations(t)
	})

	t.Run("event full", func(t *testing.T) {
		registrations := new(MockRegistrationService)
		registrations.On("Register", mock.Anything, id, mock.Anything).
			Return(nil, fmt.Errorf("failed to register participant: %w", entity.ErrEventFull))
		router := newTestRouter(new(MockEventService), registrations, stubPinger{})

		w := doRequest(router, http.MethodPost, "/api/events/"+id+"/register", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Event is full", decodeError(t, w).Message)
	})

	t.Run("cancel", func(t *testing.T) {
		registrations := new(MockRegistrationService)
		registrations.On("CancelRegistration", mock.Anything, id, "a@example.com").Return(event, nil)
		router := newTestRouter(new(MockEventService), registrations, stubPinger{})

		w := doRequest(router, http.MethodDelete, "/api/events/"+id+"/register/a@example.com", "")

		assert.Equal(t, http.StatusOK, w.Code)
		registrations.AssertExpectations(t)
	})

	t.Run("cancel unknown registration", func(t *testing.T) {
		registrations := new(MockRegistrationService)
		registrations.On("CancelRegistration", mock.Anything, id, "b@example.com").
			Return(nil, entity.ErrRegistrationNotFound)
		router := newTestRouter(new(MockEventService), registrations, stubPinger{})

		w := doRequest(router, http.MethodDelete, "/api/events/"+id+"/register/b@example.com", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Registration not found", decodeError(t, w).Message)
	})
}

func TestPanicIsAnsweredWithGenericError(t *testing.T) {
	events := new(MockEventService)
	events.On("GetUpcomingEvents", mock.Anything).Run(func(mock.Arguments) { panic("boom") })
	router := newTestRouter(events, new(MockRegistrationService), stubPinger{})

	w := doRequest(router, http.MethodGet, "/api/events", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong!", decodeError(t, w).Message)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(new(MockEventService), new(MockRegistrationService), stubPinger{})

	w := doRequest(router, http.MethodOptions, "/api/events", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	router := newTestRouter(new(MockEventService), new(MockRegistrationService), stubPinger{})
	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(new(MockEventService), new(MockRegistrationService), stubPinger{err: errors.New("down")})
	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestParseDateReadsZonelessValuesAsUTC(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{raw: "2030-01-01", want: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2030-01-01T10:30:00", want: time.Date(2030, 1, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2030-01-01T10:30:00+02:00", want: time.Date(2030, 1, 1, 8, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseDate("startDate", tt.raw)
		require.NoError(t, err, tt.raw)
		require.NotNil(t, got, tt.raw)
		assert.True(t, tt.want.Equal(*got), "%s parsed as %s", tt.raw, got)
		assert.Equal(t, time.UTC, got.Location(), tt.raw)
	}

	got, err := parseDate("startDate", "")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
