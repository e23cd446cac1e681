package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/metrics"
)

// Mirror receives every stored record on a best-effort basis.
type Mirror interface {
	Write(ctx context.Context, record *domain.DeviceDataRecord) error
}

type IngestUseCase struct {
	resolver *AccessResolver
	store    domain.DeviceDataStore
	mirror   Mirror
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewIngestUseCase(
	resolver *AccessResolver,
	store domain.DeviceDataStore,
	mirror Mirror,
	m *metrics.Metrics,
	log zerolog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		resolver: resolver,
		store:    store,
		mirror:   mirror,
		metrics:  m,
		log:      log,
	}
}

// Ingest validates, resolves and stores one payload. Rejections come back as
// a Rejected result; a non-nil error always means storage failed.
func (uc *IngestUseCase) Ingest(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error) {
	started := time.Now()
	result, err := uc.ingest(ctx, token, protocol, payload)

	outcome := "created"
	switch {
	case err != nil:
		outcome = "error"
	case !result.IsCreated():
		outcome = string(result.Reason)
	}
	uc.metrics.ObserveIngest(string(protocol), outcome, started)

	return result, err
}

func (uc *IngestUseCase) ingest(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error) {
	if token == "" {
		return domain.Rejected(domain.RejectMissingToken, "No access token specified"), nil
	}

	doc, err := NormalizePayload(payload)
	if err != nil {
		return domain.Rejected(domain.RejectInvalidPayload, payloadMessage(payload, err)), nil
	}

	deviceID, err := uc.resolver.Resolve(ctx, token, protocol, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			msg := fmt.Sprintf("Could not resolve access token '%s'", token)
			return domain.Rejected(domain.RejectUnresolvedToken, msg), nil
		}
		return domain.IngestResult{}, err
	}

	record, err := uc.store.Insert(ctx, deviceID, doc)
	if err != nil {
		return domain.IngestResult{}, err
	}

	if uc.mirror != nil {
		if err := uc.mirror.Write(ctx, record); err != nil {
			uc.metrics.MirrorFailed()
			uc.log.Warn().Err(err).Str("device_id", deviceID.String()).Msg("Failed to mirror device data")
		}
	}

	uc.log.Debug().
		Str("device_id", deviceID.String()).
		Str("protocol", string(protocol)).
		Msg("Device data stored")

	return domain.Created(record), nil
}
