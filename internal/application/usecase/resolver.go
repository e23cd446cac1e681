package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/metrics"
)

// TokenCache stores positive token resolutions. Get reports a miss with any
// error. Save must drop the entry when Evict ran after Generation was read.
type TokenCache interface {
	Get(ctx context.Context, token string, protocol domain.Protocol) (uuid.UUID, error)
	Generation(ctx context.Context, token string) (int64, error)
	Save(ctx context.Context, token string, protocol domain.Protocol, deviceID uuid.UUID, generation int64) error
	Evict(ctx context.Context, token string) error
}

// AccessResolver maps an access token and protocol to the owning device.
type AccessResolver struct {
	registry domain.DeviceRegistry
	cache    TokenCache
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewAccessResolver builds a resolver; a nil cache disables caching.
func NewAccessResolver(registry domain.DeviceRegistry, cache TokenCache, m *metrics.Metrics, log zerolog.Logger) *AccessResolver {
	return &AccessResolver{
		registry: registry,
		cache:    cache,
		metrics:  m,
		log:      log,
	}
}

// Resolve returns domain.ErrDeviceNotFound when no device matches token and
// protocol, or when requireEnabled is set and the device is disabled.
func (r *AccessResolver) Resolve(ctx context.Context, token string, protocol domain.Protocol, requireEnabled bool) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrDeviceNotFound
	}

	// Only enabled-device lookups are cached, so a hit is always valid for ingestion.
	useCache := r.cache != nil && requireEnabled
	var generation int64
	if useCache {
		id, err := r.cache.Get(ctx, token, protocol)
		if err == nil {
			r.metrics.CacheHit()
			return id, nil
		}
		r.metrics.CacheMiss()

		if generation, err = r.cache.Generation(ctx, token); err != nil {
			r.log.Warn().Err(err).Msg("Failed to read token cache generation")
			useCache = false
		}
	}

	id, err := r.registry.FindIDByAccessToken(ctx, token, protocol, requireEnabled)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.ErrDeviceNotFound
		}
		return uuid.Nil, fmt.Errorf("resolve access token: %w", err)
	}

	if useCache {
		if err := r.cache.Save(ctx, token, protocol, id, generation); err != nil {
			r.log.Warn().Err(err).Msg("Failed to cache token resolution")
		}
	}
	return id, nil
}

// Forget drops any cached resolution for token.
func (r *AccessResolver) Forget(ctx context.Context, token string) error {
	if r.cache == nil || token == "" {
		return nil
	}
	if err := r.cache.Evict(ctx, token); err != nil {
		return fmt.Errorf("evict cached access token: %w", err)
	}
	return nil
}
