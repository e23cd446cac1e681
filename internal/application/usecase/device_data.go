package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

const exportTimeLayout = "2006-01-02T15-04-05"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

type DeviceDataOptions struct {
	ItemsPerPage    int
	AllowDeletion   bool
	CascadeOnRemove bool
}

// DeviceDataUseCase serves the read side of the store. It never resolves access tokens.
type DeviceDataUseCase struct {
	registry domain.DeviceRegistry
	store    domain.DeviceDataStore
	opts     DeviceDataOptions
	now      func() time.Time
	log      zerolog.Logger
}

func NewDeviceDataUseCase(registry domain.DeviceRegistry, store domain.DeviceDataStore, opts DeviceDataOptions, log zerolog.Logger) *DeviceDataUseCase {
	if opts.ItemsPerPage < 1 {
		opts.ItemsPerPage = domain.DefaultItemsPerPage
	}
	return &DeviceDataUseCase{
		registry: registry,
		store:    store,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

func (uc *DeviceDataUseCase) Page(ctx context.Context, deviceID uuid.UUID, pageNumber int) (*domain.Page, error) {
	return uc.store.Page(ctx, deviceID, pageNumber, uc.opts.ItemsPerPage)
}

func (uc *DeviceDataUseCase) Range(ctx context.Context, deviceID uuid.UUID, from, to time.Time) ([]domain.DeviceDataRecord, error) {
	return uc.store.Range(ctx, deviceID, from, to)
}

// TimeSeries projects the device's configured fields over [start, end).
func (uc *DeviceDataUseCase) TimeSeries(ctx context.Context, deviceID uuid.UUID, start, end time.Time) (domain.TimeSeries, error) {
	device, err := uc.registry.GetByID(ctx, deviceID)
	if err != nil {
		return domain.TimeSeries{}, err
	}
	if !device.HasTimeSeries || len(device.TimeSeriesConfigurations) == 0 {
		return domain.EmptyTimeSeries(), nil
	}

	configs := device.TimeSeriesConfigurations
	if len(configs) > domain.MaxTimeSeriesConfigurations {
		configs = configs[:domain.MaxTimeSeriesConfigurations]
	}

	records, err := uc.store.Range(ctx, deviceID, start, end)
	if err != nil {
		return domain.TimeSeries{}, err
	}
	return projectTimeSeries(configs, records), nil
}

// Export returns every record of the device as an indented JSON array and the
// attachment filename it should be served under.
func (uc *DeviceDataUseCase) Export(ctx context.Context, deviceID uuid.UUID) ([]byte, string, error) {
	device, err := uc.registry.GetByID(ctx, deviceID)
	if err != nil {
		return nil, "", err
	}

	records, err := uc.store.Dump(ctx, deviceID)
	if err != nil {
		return nil, "", err
	}

	doc, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode export of %s: %w", deviceID, err)
	}
	return doc, ExportFilename(device.Name, uc.now()), nil
}

func (uc *DeviceDataUseCase) DeleteAll(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	if !uc.opts.AllowDeletion {
		return 0, domain.ErrDeletionNotAllowed
	}
	n, err := uc.store.DeleteAll(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	uc.log.Info().Str("device_id", deviceID.String()).Int64("deleted", n).Msg("Device data deleted")
	return n, nil
}

// OnDeviceRemoved runs after a device leaves the registry. Records are kept
// unless cascading is enabled.
func (uc *DeviceDataUseCase) OnDeviceRemoved(ctx context.Context, deviceID uuid.UUID) error {
	if !uc.opts.CascadeOnRemove {
		return nil
	}
	n, err := uc.store.DeleteAll(ctx, deviceID)
	if err != nil {
		return err
	}
	uc.log.Info().Str("device_id", deviceID.String()).Int64("deleted", n).Msg("Cascaded device data removal")
	return nil
}

func ExportFilename(deviceName string, at time.Time) string {
	return fmt.Sprintf("Device_data_%s_%s.json",
		unsafeFilenameChars.ReplaceAllString(deviceName, "_"),
		at.Format(exportTimeLayout))
}
