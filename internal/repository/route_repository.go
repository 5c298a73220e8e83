package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourgether/internal/model"
)

// RouteRepository defines route persistence operations, including the atomic
// rider-set mutations backing the join/leave workflow.
type RouteRepository interface {
	Create(ctx context.Context, route *model.Route) error
	List(ctx context.Context) ([]model.Route, error)
	FindByID(ctx context.Context, id string) (*model.Route, error)
	AddRider(ctx context.Context, routeID, userID uuid.UUID) (changed bool, err error)
	RemoveRider(ctx context.Context, routeID, userID uuid.UUID) (changed bool, err error)
}

type routeRepository struct {
	db *gorm.DB
}

// NewRouteRepository builds a GORM-backed repository.
func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) Create(ctx context.Context, route *model.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *routeRepository) List(ctx context.Context) ([]model.Route, error) {
	var routes []model.Route
	if err := r.db.WithContext(ctx).Preload("Riders").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// FindByID looks up a route by its external id string. Malformed ids are a
// normal input from untrusted callers and report gorm.ErrRecordNotFound, the
// same signal as a well-formed id that matches nothing.
func (r *routeRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	routeID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var route model.Route
	if err := r.db.WithContext(ctx).Preload("Riders").
		Where("id = ?", routeID).First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// AddRider inserts the membership row, ignoring the insert when it already
// exists. The single statement is atomic at the database, so concurrent joins
// for the same route cannot lose updates. RowsAffected reports whether this
// call changed anything.
func (r *routeRepository) AddRider(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	rider := model.RouteRider{RouteID: routeID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rider)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveRider deletes the membership row. Removing an absent rider reports
// changed=false.
func (r *routeRepository) RemoveRider(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("route_id = ? AND user_id = ?", routeID, userID).
		Delete(&model.RouteRider{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
