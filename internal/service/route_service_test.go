package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "tourgether/internal/errors"
	"tourgether/internal/model"
)

// MockRouteRepository is a mock implementation of RouteRepository.
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Create(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) List(ctx context.Context) ([]model.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Route), args.Error(1)
}

func (m *MockRouteRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockRouteRepository) AddRider(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, routeID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRouteRepository) RemoveRider(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, routeID, userID)
	return args.Bool(0), args.Error(1)
}

func TestRouteService_CreateRoute(t *testing.T) {
	ownerID := uuid.New()
	startTime := time.Date(2026, 6, 14, 8, 0, 0, 0, time.UTC)

	mockRoutes := new(MockRouteRepository)
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, ownerID).Return(&model.User{ID: ownerID, Name: "Alice"}, nil)
	mockRoutes.On("Create", mock.Anything, mock.AnythingOfType("*model.Route")).Return(nil)

	svc := NewRouteService(mockRoutes, mockUsers)
	route, err := svc.CreateRoute(context.Background(), "<gpx/>", "Morning loop", ownerID, startTime, "48.1, 11.5")

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, route.ID)
	assert.Equal(t, "<gpx/>", route.GPX)
	assert.Equal(t, "Morning loop", route.Name)
	assert.Equal(t, ownerID, route.OwnerID)
	assert.Equal(t, "Alice", route.OwnerName)
	assert.Equal(t, startTime, route.StartTime)
	assert.Equal(t, "48.1, 11.5", route.StartPoint)
	assert.Empty(t, route.Riders)

	mockRoutes.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestRouteService_CreateRoute_UnknownOwner(t *testing.T) {
	ownerID := uuid.New()

	mockRoutes := new(MockRouteRepository)
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, ownerID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewRouteService(mockRoutes, mockUsers)
	route, err := svc.CreateRoute(context.Background(), "<gpx/>", "Morning loop", ownerID, time.Now(), "x")

	assert.Nil(t, route)
	assert.Equal(t, apperrors.ErrUserNotFound, err)
	mockRoutes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouteService_GetRoute_NotFound(t *testing.T) {
	mockRoutes := new(MockRouteRepository)
	mockUsers := new(MockUserRepository)
	mockRoutes.On("FindByID", mock.Anything, "garbage-id").Return(nil, gorm.ErrRecordNotFound)

	svc := NewRouteService(mockRoutes, mockUsers)
	route, err := svc.GetRoute(context.Background(), "garbage-id")

	assert.Nil(t, route)
	assert.Equal(t, apperrors.ErrRouteNotFound, err)
}

func TestRouteService_Join(t *testing.T) {
	routeID := uuid.New()
	userID := uuid.New()
	route := &model.Route{ID: routeID}

	t.Run("join twice is idempotent", func(t *testing.T) {
		mockRoutes := new(MockRouteRepository)
		mockUsers := new(MockUserRepository)
		mockRoutes.On("FindByID", mock.Anything, routeID.String()).Return(route, nil)
		mockRoutes.On("AddRider", mock.Anything, routeID, userID).Return(true, nil).Once()
		mockRoutes.On("AddRider", mock.Anything, routeID, userID).Return(false, nil).Once()

		svc := NewRouteService(mockRoutes, mockUsers)

		result, err := svc.Join(context.Background(), routeID.String(), userID)
		assert.NoError(t, err)
		assert.Equal(t, MembershipApplied, result)

		result, err = svc.Join(context.Background(), routeID.String(), userID)
		assert.NoError(t, err)
		assert.Equal(t, MembershipNoChange, result)

		mockRoutes.AssertExpectations(t)
	})

	t.Run("join nonexistent route", func(t *testing.T) {
		mockRoutes := new(MockRouteRepository)
		mockUsers := new(MockUserRepository)
		mockRoutes.On("FindByID", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

		svc := NewRouteService(mockRoutes, mockUsers)

		result, err := svc.Join(context.Background(), "nope", userID)
		assert.NoError(t, err)
		assert.Equal(t, MembershipRouteNotFound, result)
		mockRoutes.AssertNotCalled(t, "AddRider", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRouteService_Leave(t *testing.T) {
	routeID := uuid.New()
	userID := uuid.New()
	route := &model.Route{ID: routeID}

	t.Run("leave when registered", func(t *testing.T) {
		mockRoutes := new(MockRouteRepository)
		mockRoutes.On("FindByID", mock.Anything, routeID.String()).Return(route, nil)
		mockRoutes.On("RemoveRider", mock.Anything, routeID, userID).Return(true, nil)

		svc := NewRouteService(mockRoutes, new(MockUserRepository))
		result, err := svc.Leave(context.Background(), routeID.String(), userID)

		assert.NoError(t, err)
		assert.Equal(t, MembershipApplied, result)
	})

	t.Run("leave when not registered", func(t *testing.T) {
		mockRoutes := new(MockRouteRepository)
		mockRoutes.On("FindByID", mock.Anything, routeID.String()).Return(route, nil)
		mockRoutes.On("RemoveRider", mock.Anything, routeID, userID).Return(false, nil)

		svc := NewRouteService(mockRoutes, new(MockUserRepository))
		result, err := svc.Leave(context.Background(), routeID.String(), userID)

		assert.NoError(t, err)
		assert.Equal(t, MembershipNoChange, result)
	})

	t.Run("leave nonexistent route", func(t *testing.T) {
		mockRoutes := new(MockRouteRepository)
		mockRoutes.On("FindByID", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

		svc := NewRouteService(mockRoutes, new(MockUserRepository))
		result, err := svc.Leave(context.Background(), "nope", userID)

		assert.NoError(t, err)
		assert.Equal(t, MembershipRouteNotFound, result)
		mockRoutes.AssertNotCalled(t, "RemoveRider", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRouteService_UserNames(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByIDs", mock.Anything, []uuid.UUID{idA, idB}).Return(map[uuid.UUID]model.User{
		idA: {ID: idA, Name: "Alice"},
		// idB is unknown and silently absent
	}, nil)

	svc := NewRouteService(new(MockRouteRepository), mockUsers)
	names, err := svc.UserNames(context.Background(), []uuid.UUID{idA, idB})

	assert.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{idA: "Alice"}, names)
}
