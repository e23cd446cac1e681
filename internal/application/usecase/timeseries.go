package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

// projectTimeSeries lays the configured fields of records out as aligned value arrays.
func projectTimeSeries(configs []domain.TimeSeriesConfiguration, records []domain.DeviceDataRecord) domain.TimeSeries {
	ts := domain.TimeSeries{
		Count:        len(records),
		DisplayNames: make([]string, len(configs)),
		Units:        make([]string, len(configs)),
		Timestamps:   make([]int64, len(records)),
		Values:       make([][]*float64, len(configs)),
	}

	for i, c := range configs {
		ts.DisplayNames[i] = c.DisplayName
		if ts.DisplayNames[i] == "" {
			ts.DisplayNames[i] = c.ValueField
		}
		ts.Units[i] = c.Unit
		ts.Values[i] = make([]*float64, len(records))
	}

	for j, r := range records {
		ts.Timestamps[j] = r.CreatedAt.UnixMilli()

		var doc any
		if err := json.Unmarshal(r.Payload, &doc); err != nil {
			continue
		}
		for i, c := range configs {
			if v, ok := lookupField(doc, c.ValueField); ok {
				ts.Values[i][j] = toNumber(v)
			}
		}
	}
	return ts
}

// lookupField resolves a literal key first, then a dotted path through nested objects.
func lookupField(doc any, field string) (any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	if v, ok := obj[field]; ok {
		return v, true
	}

	head, rest, found := strings.Cut(field, ".")
	if !found {
		return nil, false
	}
	next, ok := obj[head]
	if !ok {
		return nil, false
	}
	return lookupField(next, rest)
}

// toNumber returns nil for values that have no numeric reading.
func toNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case bool:
		if n {
			f = 1
		}
	case string:
		s := strings.TrimSpace(n)
		if s != "" {
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
				return nil
			}
			f = parsed
		}
	default:
		return nil
	}
	return &f
}
