package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

type DeviceDataGorm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeviceID  uuid.UUID `gorm:"type:uuid;not null;index:idx_device_data_device_created,priority:1"`
	Payload   JSONB     `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_device_data_device_created,priority:2"`
}

func (DeviceDataGorm) TableName() string {
	return "device_data"
}

func (dg *DeviceDataGorm) ToDomain() domain.DeviceDataRecord {
	return domain.DeviceDataRecord{
		ID:        dg.ID,
		DeviceID:  dg.DeviceID,
		Payload:   json.RawMessage(dg.Payload),
		CreatedAt: dg.CreatedAt.UTC(),
	}
}

// DeviceDataRepository is the postgres-backed domain.DeviceDataStore.
type DeviceDataRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeviceDataRepository(db *gorm.DB) *DeviceDataRepository {
	return &DeviceDataRepository{db: db, now: time.Now}
}

func (r *DeviceDataRepository) Insert(ctx context.Context, deviceID uuid.UUID, payload json.RawMessage) (*domain.DeviceDataRecord, error) {
	row := &DeviceDataGorm{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Payload:   JSONB(payload),
		CreatedAt: stamp(r.now()),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("insert device data for %s: %w", deviceID, err)
	}

	record := row.ToDomain()
	return &record, nil
}

func (r *DeviceDataRepository) Page(ctx context.Context, deviceID uuid.UUID, pageNumber, itemsPerPage int) (*domain.Page, error) {
	pageNumber, itemsPerPage = domain.NormalizePage(pageNumber, itemsPerPage)

	var total int64
	if err := r.forDevice(ctx, deviceID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count device data for %s: %w", deviceID, err)
	}

	var rows []DeviceDataGorm
	if offset, ok := domain.PageOffset(pageNumber, itemsPerPage, total); ok {
		err := r.forDevice(ctx, deviceID).
			Order("created_at desc, id desc").
			Limit(itemsPerPage).
			Offset(int(offset)).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("page device data for %s: %w", deviceID, err)
		}
	}

	return &domain.Page{
		Items:        toRecords(rows),
		CurrentPage:  pageNumber,
		TotalPages:   domain.TotalPages(total, itemsPerPage),
		TotalCount:   total,
		ItemsPerPage: itemsPerPage,
	}, nil
}

func (r *DeviceDataRepository) Range(ctx context.Context, deviceID uuid.UUID, from, to time.Time) ([]domain.DeviceDataRecord, error) {
	var rows []DeviceDataGorm
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND created_at >= ? AND created_at < ?", deviceID, from.UTC(), to.UTC()).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("range device data for %s: %w", deviceID, err)
	}
	return toRecords(rows), nil
}

func (r *DeviceDataRepository) DeleteAll(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&DeviceDataGorm{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete device data for %s: %w", deviceID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *DeviceDataRepository) Dump(ctx context.Context, deviceID uuid.UUID) ([]domain.DeviceDataRecord, error) {
	var rows []DeviceDataGorm
	err := r.forDevice(ctx, deviceID).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dump device data for %s: %w", deviceID, err)
	}
	return toRecords(rows), nil
}

func (r *DeviceDataRepository) forDevice(ctx context.Context, deviceID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&DeviceDataGorm{}).Where("device_id = ?", deviceID)
}

func toRecords(rows []DeviceDataGorm) []domain.DeviceDataRecord {
	records := make([]domain.DeviceDataRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToDomain())
	}
	return records
}

// stamp matches the microsecond precision of a postgres timestamptz.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
