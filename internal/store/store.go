package store

import (
	"context"
	"errors"
	"time"

	"device-inventory-backend/internal/model"
)

var (
	// ErrNotFound is returned when no device matches the given id.
	ErrNotFound = errors.New("device not found")
	// ErrDuplicate is returned when a write would violate the unique MAC
	// address constraint.
	ErrDuplicate = errors.New("mac address must be unique")
)

// Store defines the interface for all device persistence operations.
// Implementations are safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]model.Device, error)
	Get(ctx context.Context, id string) (*model.Device, error)
	// Create assigns d.ID on success.
	Create(ctx context.Context, d *model.Device) error
	// Update replaces the mutable fields and sets updated_at to now. It
	// returns the stored device after the update.
	Update(ctx context.Context, id string, f model.DeviceFields, now time.Time) (*model.Device, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
