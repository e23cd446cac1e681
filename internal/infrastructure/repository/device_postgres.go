package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

type DeviceGorm struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                     string    `gorm:"not null;size:100"`
	AccessToken              string    `gorm:"uniqueIndex;not null;size:64"`
	Enabled                  bool      `gorm:"not null"`
	Protocol                 string    `gorm:"not null;size:8"`
	Description              string
	HasTimeSeries            bool  `gorm:"not null;default:false"`
	TimeSeriesConfigurations JSONB `gorm:"type:jsonb"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (DeviceGorm) TableName() string {
	return "devices"
}

func toGormDevice(d *domain.Device) (*DeviceGorm, error) {
	configs := d.TimeSeriesConfigurations
	if configs == nil {
		configs = []domain.TimeSeriesConfiguration{}
	}
	raw, err := json.Marshal(configs)
	if err != nil {
		return nil, err
	}
	return &DeviceGorm{
		ID:                       d.ID,
		Name:                     d.Name,
		AccessToken:              d.AccessToken,
		Enabled:                  d.Enabled,
		Protocol:                 string(d.Protocol),
		Description:              d.Description,
		HasTimeSeries:            d.HasTimeSeries,
		TimeSeriesConfigurations: JSONB(raw),
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}, nil
}

func (dg *DeviceGorm) ToDomain() (*domain.Device, error) {
	configs := []domain.TimeSeriesConfiguration{}
	if len(dg.TimeSeriesConfigurations) > 0 {
		if err := json.Unmarshal(dg.TimeSeriesConfigurations, &configs); err != nil {
			return nil, fmt.Errorf("decode time series configurations of %s: %w", dg.ID, err)
		}
	}
	return &domain.Device{
		ID:                       dg.ID,
		Name:                     dg.Name,
		AccessToken:              dg.AccessToken,
		Enabled:                  dg.Enabled,
		Protocol:                 domain.Protocol(dg.Protocol),
		Description:              dg.Description,
		HasTimeSeries:            dg.HasTimeSeries,
		TimeSeriesConfigurations: configs,
		CreatedAt:                dg.CreatedAt,
		UpdatedAt:                dg.UpdatedAt,
	}, nil
}

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) FindIDByAccessToken(ctx context.Context, accessToken string, protocol domain.Protocol, requireEnabled bool) (uuid.UUID, error) {
	query := r.db.WithContext(ctx).
		Model(&DeviceGorm{}).
		Select("id").
		Where("access_token = ? AND protocol = ?", accessToken, string(protocol))
	if requireEnabled {
		query = query.Where("enabled = ?", true)
	}

	var row DeviceGorm
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.ErrDeviceNotFound
		}
		return uuid.Nil, fmt.Errorf("find device by access token: %w", err)
	}
	return row.ID, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	var row DeviceGorm
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("get device %s: %w", id, err)
	}
	return row.ToDomain()
}

func (r *DeviceRepository) List(ctx context.Context) ([]domain.Device, error) {
	var rows []DeviceGorm
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	devices := make([]domain.Device, 0, len(rows))
	for i := range rows {
		d, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, nil
}

func (r *DeviceRepository) Create(ctx context.Context, device *domain.Device) error {
	row, err := toGormDevice(device)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("create device: %w", err)
	}

	device.CreatedAt = row.CreatedAt
	device.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *DeviceRepository) Update(ctx context.Context, device *domain.Device) error {
	row, err := toGormDevice(device)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&DeviceGorm{ID: device.ID}).
		Select("name", "access_token", "enabled", "protocol", "description", "has_time_series", "time_series_configurations", "updated_at").
		Updates(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("update device %s: %w", device.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDeviceNotFound
	}

	device.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&DeviceGorm{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete device %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}
