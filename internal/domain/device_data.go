package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultItemsPerPage is the page size shared by every page of a query session.
const DefaultItemsPerPage = 20

type DeviceDataRecord struct {
	ID        uuid.UUID       `json:"id"`
	DeviceID  uuid.UUID       `json:"deviceId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Page struct {
	Items        []DeviceDataRecord
	CurrentPage  int
	TotalPages   int
	TotalCount   int64
	ItemsPerPage int
}

// TimeSeries holds value arrays positionally aligned to Timestamps.
// A nil value marks a record whose field could not be read as a number.
type TimeSeries struct {
	Count        int          `json:"count"`
	DisplayNames []string     `json:"displayNames"`
	Units        []string     `json:"units"`
	Timestamps   []int64      `json:"timestamps"`
	Values       [][]*float64 `json:"timeSeriesValues"`
}

// EmptyTimeSeries is returned for devices without a time series configuration.
func EmptyTimeSeries() TimeSeries {
	return TimeSeries{
		DisplayNames: []string{},
		Units:        []string{},
		Timestamps:   []int64{},
		Values:       [][]*float64{},
	}
}

// NormalizePage clamps page and size to the values every store must use.
func NormalizePage(pageNumber, itemsPerPage int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return pageNumber, itemsPerPage
}

// PageOffset returns the row offset of pageNumber, or false when the page lies
// past the last record. Both arguments must already be normalized.
func PageOffset(pageNumber, itemsPerPage int, total int64) (int64, bool) {
	if total <= 0 || int64(pageNumber-1) > (total-1)/int64(itemsPerPage) {
		return 0, false
	}
	return int64(pageNumber-1) * int64(itemsPerPage), true
}

// TotalPages returns ceil(total / perPage).
func TotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
