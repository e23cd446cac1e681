package influx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

const measurement = "device_data"

// Mirror copies the numeric top-level fields of stored records into InfluxDB.
type Mirror struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

func NewMirror(url, token, org, bucket string) *Mirror {
	client := influxdb2.NewClient(url, token)
	return &Mirror{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
	}
}

// Write records one point per record. Payloads without numeric fields are skipped.
func (m *Mirror) Write(ctx context.Context, record *domain.DeviceDataRecord) error {
	fields := NumericFields(record.Payload)
	if len(fields) == 0 {
		return nil
	}

	p := influxdb2.NewPoint(
		measurement,
		map[string]string{"device_id": record.DeviceID.String()},
		fields,
		record.CreatedAt,
	)
	if err := m.write.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write point for %s: %w", record.DeviceID, err)
	}
	return nil
}

func (m *Mirror) Ping(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx)
}

func (m *Mirror) Close() {
	m.client.Close()
}

// NumericFields picks the number and boolean members of a JSON object payload.
func NumericFields(payload json.RawMessage) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}

	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		switch n := v.(type) {
		case float64:
			fields[k] = n
		case bool:
			fields[k] = n
		}
	}
	return fields
}
