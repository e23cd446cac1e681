package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mabenj/IoT-Platform/internal/domain"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/repository"
)

type recordingMirror struct {
	records []*domain.DeviceDataRecord
	err     error
}

func (m *recordingMirror) Write(_ context.Context, record *domain.DeviceDataRecord) error {
	m.records = append(m.records, record)
	return m.err
}

type ingestFixture struct {
	registry *repository.MemoryDeviceRegistry
	store    *repository.MemoryDeviceDataStore
	ingest   *IngestUseCase
	data     *DeviceDataUseCase
	device   domain.Device
}

func newIngestFixture(t *testing.T, mirror Mirror) *ingestFixture {
	t.Helper()

	device := domain.Device{
		ID:          uuid.New(),
		Name:        "D",
		AccessToken: "abc12345",
		Enabled:     true,
		Protocol:    domain.ProtocolHTTP,
	}
	registry := repository.NewMemoryDeviceRegistry(device)
	store := repository.NewMemoryDeviceDataStore(nil)
	resolver := NewAccessResolver(registry, nil, nil, zerolog.Nop())

	return &ingestFixture{
		registry: registry,
		store:    store,
		ingest:   NewIngestUseCase(resolver, store, mirror, nil, zerolog.Nop()),
		data:     NewDeviceDataUseCase(registry, store, DeviceDataOptions{AllowDeletion: true}, zerolog.Nop()),
		device:   device,
	}
}

func TestIngest_AcceptedAndRejectedTokens(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	res, err := f.ingest.Ingest(ctx, "abc12345", domain.ProtocolHTTP, []byte(`{"x":1}`))
	require.NoError(t, err)
	require.True(t, res.IsCreated())
	assert.Equal(t, f.device.ID, res.Record.DeviceID)

	page, err := f.data.Page(ctx, f.device.ID, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.TotalCount)

	res, err = f.ingest.Ingest(ctx, "zzzzzzzz", domain.ProtocolHTTP, []byte(`{"x":2}`))
	require.NoError(t, err)
	assert.False(t, res.IsCreated())
	assert.Equal(t, domain.RejectUnresolvedToken, res.Reason)
	assert.Equal(t, "Could not resolve access token 'zzzzzzzz'", res.Message)

	page, err = f.data.Page(ctx, f.device.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestIngest_RejectsWithoutWriting(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	disabled := domain.Device{ID: uuid.New(), Name: "off", AccessToken: "disabled1", Protocol: domain.ProtocolCoAP}
	require.NoError(t, f.registry.Create(ctx, &disabled))

	tests := []struct {
		name       string
		token      string
		protocol   domain.Protocol
		payload    string
		wantReason domain.RejectReason
		wantMsg    string
	}{
		{name: "missing token", token: "", protocol: domain.ProtocolCoAP, payload: `{"x":1}`, wantReason: domain.RejectMissingToken, wantMsg: "No access token specified"},
		{name: "empty payload", token: "abc12345", protocol: domain.ProtocolHTTP, payload: "  ", wantReason: domain.RejectInvalidPayload, wantMsg: "No payload specified"},
		{name: "malformed payload", token: "abc12345", protocol: domain.ProtocolHTTP, payload: `{"x":`, wantReason: domain.RejectInvalidPayload, wantMsg: "Invalid payload: malformed JSON"},
		{name: "scalar payload", token: "abc12345", protocol: domain.ProtocolHTTP, payload: `42`, wantReason: domain.RejectInvalidPayload, wantMsg: "Invalid payload: expected a JSON object or array"},
		{name: "NUL escape", token: "abc12345", protocol: domain.ProtocolHTTP, payload: `{"a":"\u0000"}`, wantReason: domain.RejectInvalidPayload, wantMsg: "Invalid payload: NUL character in string"},
		{name: "invalid UTF-8", token: "abc12345", protocol: domain.ProtocolHTTP, payload: "{\"a\":\"\xff\"}", wantReason: domain.RejectInvalidPayload, wantMsg: "Invalid payload: invalid UTF-8"},
		{name: "wrong protocol", token: "abc12345", protocol: domain.ProtocolCoAP, payload: `{"x":1}`, wantReason: domain.RejectUnresolvedToken, wantMsg: "Could not resolve access token 'abc12345'"},
		{name: "disabled device", token: "disabled1", protocol: domain.ProtocolCoAP, payload: `{"x":1}`, wantReason: domain.RejectUnresolvedToken, wantMsg: "Could not resolve access token 'disabled1'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.ingest.Ingest(ctx, tt.token, tt.protocol, []byte(tt.payload))
			require.NoError(t, err)
			assert.False(t, res.IsCreated())
			assert.Equal(t, tt.wantReason, res.Reason)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}

	for _, id := range []uuid.UUID{f.device.ID, disabled.ID} {
		dump, err := f.store.Dump(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, dump)
	}
}

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{name: "object", raw: ` { "a" : 1 } `, want: `{"a":1}`},
		{name: "array", raw: `[1, {"b": true}]`, want: `[1,{"b":true}]`},
		{name: "escaped backslash before u0000 is text", raw: `{"a":"\\u0000"}`, want: `{"a":"\\u0000"}`},
		{name: "unicode escape", raw: `{"a":"\u00e9"}`, want: `{"a":"\u00e9"}`},
		{name: "NUL in value", raw: `{"a":"x\u0000y"}`, wantErr: "NUL character in string"},
		{name: "NUL in key", raw: `{"\u0000":1}`, wantErr: "NUL character in string"},
		{name: "NUL in nested array", raw: `{"a":[{"b":["\u0000"]}]}`, wantErr: "NUL character in string"},
		{name: "invalid UTF-8 value", raw: "{\"a\":\"\xff\"}", wantErr: "invalid UTF-8"},
		{name: "invalid UTF-8 key", raw: "{\"\xc3\x28\":1}", wantErr: "invalid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePayload([]byte(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidPayload)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestIngest_CompactsPayload(t *testing.T) {
	f := newIngestFixture(t, nil)

	res, err := f.ingest.Ingest(context.Background(), "abc12345", domain.ProtocolHTTP, []byte("{ \"x\" : [1, 2] }\n"))
	require.NoError(t, err)
	require.True(t, res.IsCreated())
	assert.Equal(t, `{"x":[1,2]}`, string(res.Record.Payload))
}

func TestIngest_CreatedAtIsMonotonicPerDevice(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	var last time.Time
	for i := 0; i < 25; i++ {
		res, err := f.ingest.Ingest(ctx, "abc12345", domain.ProtocolHTTP, []byte(`{"i":1}`))
		require.NoError(t, err)
		assert.False(t, res.Record.CreatedAt.Before(last))
		last = res.Record.CreatedAt
	}

	dump, err := f.store.Dump(ctx, f.device.ID)
	require.NoError(t, err)
	for i := 1; i < len(dump); i++ {
		assert.False(t, dump[i].CreatedAt.Before(dump[i-1].CreatedAt))
	}
}

func TestIngest_MirrorFailureDoesNotFailIngest(t *testing.T) {
	mirror := &recordingMirror{err: errors.New("influx unavailable")}
	f := newIngestFixture(t, mirror)

	res, err := f.ingest.Ingest(context.Background(), "abc12345", domain.ProtocolHTTP, []byte(`{"temp":21}`))
	require.NoError(t, err)
	assert.True(t, res.IsCreated())
	require.Len(t, mirror.records, 1)
	assert.Equal(t, res.Record.ID, mirror.records[0].ID)
}

func TestIngest_StorageFailureIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deviceID := uuid.New()
	registry := domain.NewMockDeviceRegistry(ctrl)
	registry.EXPECT().
		FindIDByAccessToken(gomock.Any(), "abc12345", domain.ProtocolCoAP, true).
		Return(deviceID, nil)

	store := domain.NewMockDeviceDataStore(ctrl)
	store.EXPECT().
		Insert(gomock.Any(), deviceID, gomock.Any()).
		Return(nil, errors.New("disk full"))

	mirror := &recordingMirror{}
	uc := NewIngestUseCase(NewAccessResolver(registry, nil, nil, zerolog.Nop()), store, mirror, nil, zerolog.Nop())

	_, err := uc.Ingest(context.Background(), "abc12345", domain.ProtocolCoAP, []byte(`{"x":1}`))
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, mirror.records)
}
