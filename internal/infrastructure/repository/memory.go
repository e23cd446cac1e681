package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

// MemoryDeviceRegistry is an in-process domain.DeviceRegistry for tests and local runs.
type MemoryDeviceRegistry struct {
	mu      sync.RWMutex
	devices map[uuid.UUID]domain.Device
}

func NewMemoryDeviceRegistry(devices ...domain.Device) *MemoryDeviceRegistry {
	r := &MemoryDeviceRegistry{devices: make(map[uuid.UUID]domain.Device, len(devices))}
	for _, d := range devices {
		r.devices[d.ID] = d
	}
	return r
}

func (r *MemoryDeviceRegistry) FindIDByAccessToken(_ context.Context, accessToken string, protocol domain.Protocol, requireEnabled bool) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.devices {
		if d.AccessToken != accessToken || d.Protocol != protocol {
			continue
		}
		if requireEnabled && !d.Enabled {
			continue
		}
		return d.ID, nil
	}
	return uuid.Nil, domain.ErrDeviceNotFound
}

func (r *MemoryDeviceRegistry) GetByID(_ context.Context, id uuid.UUID) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	return &d, nil
}

func (r *MemoryDeviceRegistry) List(_ context.Context) ([]domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]domain.Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.After(devices[j].CreatedAt)
	})
	return devices, nil
}

func (r *MemoryDeviceRegistry) Create(_ context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenTaken(device.AccessToken, device.ID) {
		return domain.ErrDeviceAlreadyExists
	}
	now := time.Now().UTC()
	device.CreatedAt, device.UpdatedAt = now, now
	r.devices[device.ID] = *device
	return nil
}

func (r *MemoryDeviceRegistry) Update(_ context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.devices[device.ID]
	if !ok {
		return domain.ErrDeviceNotFound
	}
	if r.tokenTaken(device.AccessToken, device.ID) {
		return domain.ErrDeviceAlreadyExists
	}
	device.CreatedAt = existing.CreatedAt
	device.UpdatedAt = time.Now().UTC()
	r.devices[device.ID] = *device
	return nil
}

func (r *MemoryDeviceRegistry) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return domain.ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}

func (r *MemoryDeviceRegistry) tokenTaken(token string, except uuid.UUID) bool {
	for id, d := range r.devices {
		if id != except && d.AccessToken == token {
			return true
		}
	}
	return false
}

// MemoryDeviceDataStore is an in-process domain.DeviceDataStore.
type MemoryDeviceDataStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	records map[uuid.UUID][]domain.DeviceDataRecord
}

// NewMemoryDeviceDataStore uses now to stamp records; nil means time.Now.
func NewMemoryDeviceDataStore(now func() time.Time) *MemoryDeviceDataStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryDeviceDataStore{
		now:     now,
		records: make(map[uuid.UUID][]domain.DeviceDataRecord),
	}
}

func (s *MemoryDeviceDataStore) Insert(_ context.Context, deviceID uuid.UUID, payload json.RawMessage) (*domain.DeviceDataRecord, error) {
	record := domain.DeviceDataRecord{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: stamp(s.now()),
	}

	s.mu.Lock()
	s.records[deviceID] = append(s.records[deviceID], record)
	s.mu.Unlock()

	return &record, nil
}

func (s *MemoryDeviceDataStore) Page(_ context.Context, deviceID uuid.UUID, pageNumber, itemsPerPage int) (*domain.Page, error) {
	pageNumber, itemsPerPage = domain.NormalizePage(pageNumber, itemsPerPage)

	ascending := s.sorted(deviceID)
	total := len(ascending)

	items := []domain.DeviceDataRecord{}
	if offset, ok := domain.PageOffset(pageNumber, itemsPerPage, int64(total)); ok {
		for i := int(offset); i < total && len(items) < itemsPerPage; i++ {
			items = append(items, ascending[total-1-i])
		}
	}

	return &domain.Page{
		Items:        items,
		CurrentPage:  pageNumber,
		TotalPages:   domain.TotalPages(int64(total), itemsPerPage),
		TotalCount:   int64(total),
		ItemsPerPage: itemsPerPage,
	}, nil
}

func (s *MemoryDeviceDataStore) Range(_ context.Context, deviceID uuid.UUID, from, to time.Time) ([]domain.DeviceDataRecord, error) {
	result := []domain.DeviceDataRecord{}
	for _, r := range s.sorted(deviceID) {
		if !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *MemoryDeviceDataStore) DeleteAll(_ context.Context, deviceID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records[deviceID]))
	delete(s.records, deviceID)
	return n, nil
}

func (s *MemoryDeviceDataStore) Dump(_ context.Context, deviceID uuid.UUID) ([]domain.DeviceDataRecord, error) {
	return s.sorted(deviceID), nil
}

// sorted returns a snapshot ordered by createdAt, ties kept in insertion order.
func (s *MemoryDeviceDataStore) sorted(deviceID uuid.UUID) []domain.DeviceDataRecord {
	s.mu.RLock()
	snapshot := append([]domain.DeviceDataRecord{}, s.records[deviceID]...)
	s.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})
	return snapshot
}
