package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabenj/IoT-Platform/internal/application/usecase"
	"github.com/mabenj/IoT-Platform/internal/domain"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/metrics"
	"github.com/mabenj/IoT-Platform/internal/infrastructure/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type webFixture struct {
	router   *gin.Engine
	ingest   *usecase.IngestUseCase
	store    *repository.MemoryDeviceDataStore
	registry *repository.MemoryDeviceRegistry
	device   domain.Device
}

func newWebFixture(t *testing.T, opts usecase.DeviceDataOptions) *webFixture {
	t.Helper()

	device := domain.Device{
		ID:            uuid.New(),
		Name:          "Greenhouse 2",
		AccessToken:   "abc12345",
		Enabled:       true,
		Protocol:      domain.ProtocolHTTP,
		HasTimeSeries: true,
		TimeSeriesConfigurations: []domain.TimeSeriesConfiguration{
			{ValueField: "temp", DisplayName: "Temperature", Unit: "C"},
			{ValueField: "hum"},
		},
	}
	registry := repository.NewMemoryDeviceRegistry(device)
	store := repository.NewMemoryDeviceDataStore(nil)
	m := metrics.New()
	resolver := usecase.NewAccessResolver(registry, nil, m, zerolog.Nop())

	dataUC := usecase.NewDeviceDataUseCase(registry, store, opts, zerolog.Nop())
	deviceUC := usecase.NewDeviceUseCase(registry, resolver, dataUC.OnDeviceRemoved, zerolog.Nop())

	router := NewRouter(
		NewDeviceDataHandler(dataUC, zerolog.Nop()),
		NewDeviceHandler(deviceUC, zerolog.Nop()),
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, Metrics: m.Handler(), Log: zerolog.Nop()},
	)

	return &webFixture{
		router:   router,
		ingest:   usecase.NewIngestUseCase(resolver, store, nil, m, zerolog.Nop()),
		store:    store,
		registry: registry,
		device:   device,
	}
}

func (f *webFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *webFixture) post(t *testing.T, payload string) domain.DeviceDataRecord {
	t.Helper()
	res, err := f.ingest.Ingest(context.Background(), f.device.AccessToken, domain.ProtocolHTTP, []byte(payload))
	require.NoError(t, err)
	require.True(t, res.IsCreated())
	return *res.Record
}

func TestDeviceData_Page(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})
	for i := 0; i < 23; i++ {
		f.post(t, fmt.Sprintf(`{"i":%d}`, i))
	}

	rec := f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Pagination struct {
			CurrentCount int   `json:"currentCount"`
			TotalCount   int64 `json:"totalCount"`
			CurrentPage  int   `json:"currentPage"`
			TotalPages   int   `json:"totalPages"`
			ItemsPerPage int   `json:"itemsPerPage"`
		} `json:"pagination"`
		Items []domain.DeviceDataRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pagination.CurrentCount)
	assert.Equal(t, int64(23), body.Pagination.TotalCount)
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 2, body.Pagination.TotalPages)
	assert.Equal(t, 20, body.Pagination.ItemsPerPage)
	require.Len(t, body.Items, 3)
	assert.JSONEq(t, `{"i":2}`, string(body.Items[0].Payload))
}

func TestDeviceData_PageFarBeyondLastIsEmpty(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})
	for i := 0; i < 3; i++ {
		f.post(t, fmt.Sprintf(`{"i":%d}`, i))
	}

	for _, page := range []string{"5", "461168601842738792", "9223372036854775807"} {
		rec := f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"?page="+page, "")
		require.Equal(t, http.StatusOK, rec.Code, "page %s", page)
		assert.Contains(t, rec.Body.String(), `"items":[]`)
		assert.Contains(t, rec.Body.String(), `"currentPage":`+page)
	}
}

func TestDeviceData_PageValidation(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})

	rec := f.do(http.MethodGet, "/deviceData/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid device id"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/deviceData/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestDeviceData_RangeAndTimeSeries(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})
	first := f.post(t, `{"temp":20,"hum":"41.5"}`)
	f.post(t, `{"temp":21}`)
	f.post(t, `{"temp":"warm","hum":43}`)

	start := first.CreatedAt.Add(-time.Second).UnixMilli()
	end := time.Now().Add(time.Hour).UnixMilli()
	query := fmt.Sprintf("?start=%d&end=%d", start, end)

	rec := f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"/range"+query, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rng struct {
		Count int                       `json:"count"`
		Items []domain.DeviceDataRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rng))
	assert.Equal(t, 3, rng.Count)
	assert.Equal(t, first.ID, rng.Items[0].ID)

	rec = f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"/timeSeries"+query, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ts struct {
		Count        int          `json:"count"`
		DisplayNames []string     `json:"displayNames"`
		Units        []string     `json:"units"`
		Timestamps   []int64      `json:"timestamps"`
		Values       [][]*float64 `json:"timeSeriesValues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ts))
	assert.Equal(t, 3, ts.Count)
	assert.Equal(t, []string{"Temperature", "hum"}, ts.DisplayNames)
	assert.Equal(t, []string{"C", ""}, ts.Units)
	assert.Len(t, ts.Timestamps, 3)
	require.Len(t, ts.Values, 2)
	assert.Len(t, ts.Values[0], 3)
	assert.Len(t, ts.Values[1], 3)
	assert.Nil(t, ts.Values[0][2])
	assert.Nil(t, ts.Values[1][1])
	require.NotNil(t, ts.Values[1][0])
	assert.Equal(t, 41.5, *ts.Values[1][0])

	rec = f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"/timeSeries?start=abc&end=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/deviceData/"+uuid.NewString()+"/timeSeries"+query, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceData_Export(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})
	f.post(t, `{"a":1}`)
	f.post(t, `[true,false]`)

	rec := f.do(http.MethodGet, "/deviceData/"+f.device.ID.String()+"/exportJson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="Device_data_Greenhouse_2_`), disposition)
	assert.True(t, strings.HasSuffix(disposition, `.json"`), disposition)

	var exported []domain.DeviceDataRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	dump, err := f.store.Dump(context.Background(), f.device.ID)
	require.NoError(t, err)
	require.Len(t, exported, len(dump))
	for i := range dump {
		assert.Equal(t, dump[i].ID, exported[i].ID)
	}

	rec = f.do(http.MethodGet, "/deviceData/"+uuid.NewString()+"/exportJson", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceData_DeletePolicy(t *testing.T) {
	locked := newWebFixture(t, usecase.DeviceDataOptions{})
	locked.post(t, `{"a":1}`)

	rec := locked.do(http.MethodDelete, "/deviceData/"+locked.device.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Not allowed"}`, rec.Body.String())

	open := newWebFixture(t, usecase.DeviceDataOptions{AllowDeletion: true})
	open.post(t, `{"a":1}`)

	rec = open.do(http.MethodDelete, "/deviceData/"+open.device.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = open.do(http.MethodGet, "/deviceData/"+open.device.ID.String()+"?page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCount":0`)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestDevices_CRUD(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})

	rec := f.do(http.MethodPost, "/devices", `{"name":"soil","accessToken":"soil12345","enabled":true,"protocol":"coap"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domain.ProtocolCoAP, created.Protocol)

	rec = f.do(http.MethodPost, "/devices", `{"name":"copy","accessToken":"soil12345","protocol":"http"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var devices []domain.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	assert.Len(t, devices, 2)

	rec = f.do(http.MethodPut, "/devices/"+created.ID.String(), `{"name":"soil v2","accessToken":"soil12345","protocol":"coap"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/devices/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"soil v2"`)
	assert.Contains(t, rec.Body.String(), `"enabled":false`)

	rec = f.do(http.MethodDelete, "/devices/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/devices/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDevices_Validation(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})

	bodies := []string{
		`{"accessToken":"abcdefgh1","protocol":"http"}`,
		`{"name":"x","accessToken":"short","protocol":"http"}`,
		`{"name":"x","accessToken":"has-dash-1","protocol":"http"}`,
		`{"name":"x","accessToken":"abcdefgh1","protocol":"mqtt"}`,
		`{"name":"x","accessToken":"abcdefgh1","protocol":"http","timeSeriesConfigurations":[{"valueField":"a"},{"valueField":"b"},{"valueField":"c"}]}`,
		`{"name":"x","accessToken":"abcdefgh1","protocol":"http","timeSeriesConfigurations":[{"unit":"C"}]}`,
		`not json`,
	}
	for _, body := range bodies {
		rec := f.do(http.MethodPost, "/devices", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newWebFixture(t, usecase.DeviceDataOptions{})
	f.post(t, `{"a":1}`)

	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `iot_ingest_requests_total{protocol="http",result="created"} 1`)
}
