//go:generate mockgen -destination=mock_repository.go -package=domain github.com/mabenj/IoT-Platform/internal/domain DeviceRegistry,DeviceDataStore

package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeviceRegistry is the device lookup surface used by this service.
type DeviceRegistry interface {
	FindIDByAccessToken(ctx context.Context, accessToken string, protocol Protocol, requireEnabled bool) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Device, error)
	List(ctx context.Context) ([]Device, error)
	Create(ctx context.Context, device *Device) error
	Update(ctx context.Context, device *Device) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeviceDataStore is the append-only per-device record store.
type DeviceDataStore interface {
	Insert(ctx context.Context, deviceID uuid.UUID, payload json.RawMessage) (*DeviceDataRecord, error)
	Page(ctx context.Context, deviceID uuid.UUID, pageNumber, itemsPerPage int) (*Page, error)
	Range(ctx context.Context, deviceID uuid.UUID, from, to time.Time) ([]DeviceDataRecord, error)
	DeleteAll(ctx context.Context, deviceID uuid.UUID) (int64, error)
	Dump(ctx context.Context, deviceID uuid.UUID) ([]DeviceDataRecord, error)
}
