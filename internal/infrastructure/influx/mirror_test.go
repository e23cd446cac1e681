package influx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

func TestNumericFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    map[string]any
	}{
		{name: "mixed object", payload: `{"temp":21.5,"on":true,"label":"x","nested":{"a":1}}`, want: map[string]any{"temp": 21.5, "on": true}},
		{name: "array payload", payload: `[1,2,3]`, want: nil},
		{name: "no numbers", payload: `{"label":"x"}`, want: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NumericFields(json.RawMessage(tt.payload)))
		})
	}
}

type writeCapture struct {
	mu    sync.Mutex
	lines []string
	query string
}

func (c *writeCapture) handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v2/write" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body, _ := io.ReadAll(r.Body)

	c.mu.Lock()
	c.lines = append(c.lines, strings.TrimSpace(string(body)))
	c.query = r.URL.RawQuery
	c.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func TestMirror_Write(t *testing.T) {
	capture := &writeCapture{}
	srv := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer srv.Close()

	m := NewMirror(srv.URL, "token", "iot", "device_data")
	defer m.Close()

	deviceID := uuid.New()
	record := &domain.DeviceDataRecord{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Payload:   json.RawMessage(`{"temp":21.5}`),
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, m.Write(context.Background(), record))

	capture.mu.Lock()
	defer capture.mu.Unlock()
	require.Len(t, capture.lines, 1)
	assert.Equal(t, "device_data,device_id="+deviceID.String()+" temp=21.5 1700000000000000000", capture.lines[0])
	assert.Contains(t, capture.query, "bucket=device_data")
	assert.Contains(t, capture.query, "org=iot")
}

func TestMirror_WriteSkipsNonNumeric(t *testing.T) {
	capture := &writeCapture{}
	srv := httptest.NewServer(http.HandlerFunc(capture.handler))
	defer srv.Close()

	m := NewMirror(srv.URL, "token", "iot", "device_data")
	defer m.Close()

	record := &domain.DeviceDataRecord{DeviceID: uuid.New(), Payload: json.RawMessage(`["a"]`), CreatedAt: time.Now()}
	require.NoError(t, m.Write(context.Background(), record))

	capture.mu.Lock()
	defer capture.mu.Unlock()
	assert.Empty(t, capture.lines)
}
