package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "tourgether/internal/errors"
	"tourgether/internal/model"
	"tourgether/internal/repository"
)

// MembershipResult describes the outcome of a join or leave call.
type MembershipResult int

const (
	// MembershipRouteNotFound means the route does not exist.
	MembershipRouteNotFound MembershipResult = iota
	// MembershipNoChange means the user was already in the requested state.
	MembershipNoChange
	// MembershipApplied means the rider set changed.
	MembershipApplied
)

// RouteService exposes route upload, listing and the join/leave workflow.
type RouteService interface {
	CreateRoute(ctx context.Context, gpx, name string, ownerID uuid.UUID, startTime time.Time, startPoint string) (*model.Route, error)
	ListRoutes(ctx context.Context) ([]model.Route, error)
	GetRoute(ctx context.Context, id string) (*model.Route, error)
	Join(ctx context.Context, routeID string, userID uuid.UUID) (MembershipResult, error)
	Leave(ctx context.Context, routeID string, userID uuid.UUID) (MembershipResult, error)
	UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type routeService struct {
	routeRepo repository.RouteRepository
	userRepo  repository.UserRepository
}

// NewRouteService creates a new route service.
func NewRouteService(routeRepo repository.RouteRepository, userRepo repository.UserRepository) RouteService {
	return &routeService{routeRepo: routeRepo, userRepo: userRepo}
}

// CreateRoute persists a new route with an empty rider set. The owner's name
// is snapshotted onto the route at creation and not kept in sync afterwards.
// The owner is not auto-joined to the rider set.
func (s *routeService) CreateRoute(ctx context.Context, gpx, name string, ownerID uuid.UUID, startTime time.Time, startPoint string) (*model.Route, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}

	route := &model.Route{
		ID:         uuid.New(),
		Name:       name,
		GPX:        gpx,
		OwnerID:    owner.ID,
		OwnerName:  owner.Name,
		StartTime:  startTime,
		StartPoint: startPoint,
	}

	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return route, nil
}

// ListRoutes returns every route. No ordering is guaranteed.
func (s *routeService) ListRoutes(ctx context.Context) ([]model.Route, error) {
	return s.routeRepo.List(ctx)
}

// GetRoute finds a route by its external id string. Malformed or unknown ids
// both report ErrRouteNotFound.
func (s *routeService) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	route, err := s.routeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRouteNotFound
		}
		return nil, fmt.Errorf("find route: %w", err)
	}
	return route, nil
}

// Join adds the user to the route's rider set. Joining a route the user is
// already on reports MembershipNoChange and mutates nothing.
func (s *routeService) Join(ctx context.Context, routeID string, userID uuid.UUID) (MembershipResult, error) {
	route, err := s.routeRepo.FindByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MembershipRouteNotFound, nil
		}
		return MembershipRouteNotFound, fmt.Errorf("find route: %w", err)
	}

	changed, err := s.routeRepo.AddRider(ctx, route.ID, userID)
	if err != nil {
		return MembershipRouteNotFound, fmt.Errorf("add rider: %w", err)
	}
	if !changed {
		return MembershipNoChange, nil
	}
	return MembershipApplied, nil
}

// Leave removes the user from the route's rider set. Leaving a route the user
// never joined reports MembershipNoChange.
func (s *routeService) Leave(ctx context.Context, routeID string, userID uuid.UUID) (MembershipResult, error) {
	route, err := s.routeRepo.FindByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MembershipRouteNotFound, nil
		}
		return MembershipRouteNotFound, fmt.Errorf("find route: %w", err)
	}

	changed, err := s.routeRepo.RemoveRider(ctx, route.ID, userID)
	if err != nil {
		return MembershipRouteNotFound, fmt.Errorf("remove rider: %w", err)
	}
	if !changed {
		return MembershipNoChange, nil
	}
	return MembershipApplied, nil
}

// UserNames resolves display names for a set of user ids. Unknown ids are
// absent from the result, not an error.
func (s *routeService) UserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	names := make(map[uuid.UUID]string, len(users))
	for id, u := range users {
		names[id] = u.Name
	}
	return names, nil
}
