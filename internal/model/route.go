package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Route represents an uploaded GPX track plus its start metadata. The GPX
// payload is stored opaquely; the backend never parses or validates it.
// Routes are immutable after creation except for the rider set.
type Route struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	GPX        string    `json:"gpx" gorm:"type:longtext;not null"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:char(36);not null;index"`
	OwnerName  string    `json:"owner_name" gorm:"size:255;not null"` // snapshot at creation, not kept in sync
	StartTime  time.Time `json:"start_time" gorm:"not null"`
	StartPoint string    `json:"start_point" gorm:"size:255;not null"`
	CreatedAt  time.Time `json:"created_at"`

	Riders []RouteRider `json:"-" gorm:"foreignKey:RouteID"`
}

// BeforeCreate sets the route ID before creating the record.
func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RiderIDs returns the set of user IDs registered on the route.
func (r *Route) RiderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Riders))
	for _, rider := range r.Riders {
		ids = append(ids, rider.UserID)
	}
	return ids
}

// RouteRider is one membership row in a route's rider set. The composite
// primary key makes set-add a single idempotent insert.
type RouteRider struct {
	RouteID   uuid.UUID `json:"route_id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
