package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

// RemovalHook is told about every device that leaves the registry.
type RemovalHook func(ctx context.Context, deviceID uuid.UUID) error

type DeviceUseCase struct {
	registry  domain.DeviceRegistry
	resolver  *AccessResolver
	onRemoved RemovalHook
	log       zerolog.Logger
}

func NewDeviceUseCase(registry domain.DeviceRegistry, resolver *AccessResolver, onRemoved RemovalHook, log zerolog.Logger) *DeviceUseCase {
	return &DeviceUseCase{
		registry:  registry,
		resolver:  resolver,
		onRemoved: onRemoved,
		log:       log,
	}
}

func (uc *DeviceUseCase) List(ctx context.Context) ([]domain.Device, error) {
	return uc.registry.List(ctx)
}

func (uc *DeviceUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	return uc.registry.GetByID(ctx, id)
}

func (uc *DeviceUseCase) Create(ctx context.Context, device *domain.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	if err := device.Validate(); err != nil {
		return err
	}
	if err := uc.registry.Create(ctx, device); err != nil {
		return err
	}

	uc.log.Info().Str("device_id", device.ID.String()).Str("protocol", string(device.Protocol)).Msg("Device created")
	return nil
}

// Update replaces the mutable fields of an existing device.
func (uc *DeviceUseCase) Update(ctx context.Context, device *domain.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}

	existing, err := uc.registry.GetByID(ctx, device.ID)
	if err != nil {
		return err
	}
	device.CreatedAt = existing.CreatedAt

	// Evicted on both sides of the write: a failed first eviction leaves the
	// device untouched, the second drops resolutions cached meanwhile.
	if err := uc.resolver.Forget(ctx, existing.AccessToken); err != nil {
		return err
	}
	if err := uc.registry.Update(ctx, device); err != nil {
		return err
	}
	if err := uc.resolver.Forget(ctx, existing.AccessToken); err != nil {
		return err
	}

	uc.log.Info().Str("device_id", device.ID.String()).Msg("Device updated")
	return nil
}

func (uc *DeviceUseCase) Remove(ctx context.Context, id uuid.UUID) error {
	existing, err := uc.registry.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.resolver.Forget(ctx, existing.AccessToken); err != nil {
		return err
	}
	if err := uc.registry.Delete(ctx, id); err != nil {
		return err
	}
	evictErr := uc.resolver.Forget(ctx, existing.AccessToken)

	if uc.onRemoved != nil {
		if err := uc.onRemoved(ctx, id); err != nil {
			uc.log.Error().Err(err).Str("device_id", id.String()).Msg("Device removal hook failed")
			return err
		}
	}
	if evictErr != nil {
		return evictErr
	}

	uc.log.Info().Str("device_id", id.String()).Msg("Device removed")
	return nil
}
