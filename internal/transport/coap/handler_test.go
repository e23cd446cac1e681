package coap

import (
	"context"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabenj/IoT-Platform/internal/application/usecase"
	"github.com/mabenj/IoT-Platform/internal/domain"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/repository"
)

type ingestFunc func(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error)

func (f ingestFunc) Ingest(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error) {
	return f(ctx, token, protocol, payload)
}

func newTestHandler(t *testing.T) (*Handler, *repository.MemoryDeviceDataStore, uuid.UUID) {
	t.Helper()

	device := domain.Device{
		ID:          uuid.New(),
		Name:        "coap sensor",
		AccessToken: "coap1234",
		Enabled:     true,
		Protocol:    domain.ProtocolCoAP,
	}
	registry := repository.NewMemoryDeviceRegistry(device)
	store := repository.NewMemoryDeviceDataStore(nil)
	resolver := usecase.NewAccessResolver(registry, nil, nil, zerolog.Nop())
	uc := usecase.NewIngestUseCase(resolver, store, nil, nil, zerolog.Nop())

	return NewHandler(uc, zerolog.Nop()), store, device.ID
}

func TestHandle_StoresJSONPayload(t *testing.T) {
	h, store, deviceID := newTestHandler(t)

	resp := h.Handle(context.Background(), Request{
		Code:    codes.POST,
		Path:    "/coap1234",
		Payload: []byte(`{"temp": 19}`),
	})
	assert.Equal(t, Response{Code: codes.Created}, resp)

	dump, err := store.Dump(context.Background(), deviceID)
	require.NoError(t, err)
	require.Len(t, dump, 1)
	assert.Equal(t, `{"temp":19}`, string(dump[0].Payload))
}

func TestHandle_StoresCBORPayload(t *testing.T) {
	h, store, deviceID := newTestHandler(t)

	payload, err := cbor.Marshal(map[string]any{"temp": 19.5, "tags": []string{"a"}})
	require.NoError(t, err)

	resp := h.Handle(context.Background(), Request{
		Code:          codes.POST,
		Path:          "coap1234",
		ContentFormat: message.AppCBOR,
		HasFormat:     true,
		Payload:       payload,
	})
	require.Equal(t, codes.Created, resp.Code)

	dump, err := store.Dump(context.Background(), deviceID)
	require.NoError(t, err)
	require.Len(t, dump, 1)
	assert.JSONEq(t, `{"temp":19.5,"tags":["a"]}`, string(dump[0].Payload))
}

func TestHandle_Rejections(t *testing.T) {
	h, store, deviceID := newTestHandler(t)

	tests := []struct {
		name string
		req  Request
		want Response
	}{
		{
			name: "get",
			req:  Request{Code: codes.GET, Path: "/coap1234"},
			want: Response{Code: codes.MethodNotAllowed, Body: "Method 'GET' is not supported"},
		},
		{
			name: "delete",
			req:  Request{Code: codes.DELETE, Path: "/coap1234"},
			want: Response{Code: codes.MethodNotAllowed, Body: "Method 'DELETE' is not supported"},
		},
		{
			name: "missing token",
			req:  Request{Code: codes.POST, Path: "/", Payload: []byte(`{"a":1}`)},
			want: Response{Code: codes.BadRequest, Body: "No access token specified"},
		},
		{
			name: "missing payload",
			req:  Request{Code: codes.POST, Path: "/coap1234"},
			want: Response{Code: codes.BadRequest, Body: "No payload specified"},
		},
		{
			name: "invalid payload",
			req:  Request{Code: codes.POST, Path: "/coap1234", Payload: []byte("temp=19")},
			want: Response{Code: codes.BadRequest, Body: "Invalid payload: expected a JSON object or array"},
		},
		{
			name: "unknown token",
			req:  Request{Code: codes.POST, Path: "/zzzzzzzz", Payload: []byte(`{"a":1}`)},
			want: Response{Code: codes.BadRequest, Body: "Could not resolve access token 'zzzzzzzz'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Handle(context.Background(), tt.req))
		})
	}

	dump, err := store.Dump(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Empty(t, dump)
}

func TestHandle_MalformedCBOR(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := h.Handle(context.Background(), Request{
		Code:          codes.POST,
		Path:          "/coap1234",
		ContentFormat: message.AppCBOR,
		HasFormat:     true,
		Payload:       []byte{0xbf, 0x61},
	})
	assert.Equal(t, codes.BadRequest, resp.Code)
	assert.Contains(t, resp.Body, "Invalid payload: malformed CBOR")
}

func TestHandle_StorageFailure(t *testing.T) {
	h := NewHandler(ingestFunc(func(context.Context, string, domain.Protocol, []byte) (domain.IngestResult, error) {
		return domain.IngestResult{}, errors.New("pq: deadlock detected")
	}), zerolog.Nop())

	resp := h.Handle(context.Background(), Request{Code: codes.POST, Path: "/coap1234", Payload: []byte(`{}`)})
	assert.Equal(t, Response{Code: codes.InternalServerError, Body: "Something went wrong"}, resp)
}

func TestFirstSegment(t *testing.T) {
	assert.Equal(t, "abc", firstSegment("/abc/def"))
	assert.Equal(t, "abc", firstSegment("abc"))
	assert.Equal(t, "abc", firstSegment("//abc"))
	assert.Equal(t, "", firstSegment("/"))
	assert.Equal(t, "", firstSegment(""))
}
