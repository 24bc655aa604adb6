package db

import (
	"context"
	"errors"

	"github.com/ukydev/vehicle-quality/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidID      = errors.New("invalid id")
	ErrNilCollection  = errors.New("mongo collection is nil")
	ErrDuplicateEvent = errors.New("timeline event already recorded")
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

// VehicleCursor defines the interface for vehicle cursor operations.
type VehicleCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// TimelineCollection defines the interface for timeline event operations.
type TimelineCollection interface {
	InsertEvent(ctx context.Context, event models.TimelineEvent) error
	FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.TimelineEvent, error)
	DeleteEvent(ctx context.Context, vehicleID, eventID string) error
	DeleteEventsByVehicle(ctx context.Context, vehicleID string) (int64, error)
}
