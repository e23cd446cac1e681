package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Protocol string

const (
	ProtocolHTTP Protocol = "http"
	ProtocolCoAP Protocol = "coap"
)

// MaxTimeSeriesConfigurations caps how many payload fields a device can chart.
const MaxTimeSeriesConfigurations = 2

var accessTokenPattern = regexp.MustCompile(`^[a-zA-Z0-9]{8,}$`)

func (p Protocol) Valid() bool {
	return p == ProtocolHTTP || p == ProtocolCoAP
}

type TimeSeriesConfiguration struct {
	ValueField  string `json:"valueField"`
	DisplayName string `json:"displayName,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

type Device struct {
	ID                       uuid.UUID                 `json:"id"`
	Name                     string                    `json:"name"`
	AccessToken              string                    `json:"accessToken"`
	Enabled                  bool                      `json:"enabled"`
	Protocol                 Protocol                  `json:"protocol"`
	Description              string                    `json:"description,omitempty"`
	HasTimeSeries            bool                      `json:"hasTimeSeries"`
	TimeSeriesConfigurations []TimeSeriesConfiguration `json:"timeSeriesConfigurations"`
	CreatedAt                time.Time                 `json:"createdAt"`
	UpdatedAt                time.Time                 `json:"updatedAt"`
}

// Validate checks the registry invariants that are not enforced by the database.
func (d *Device) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if !accessTokenPattern.MatchString(d.AccessToken) {
		return fmt.Errorf("%w: access token must be at least 8 alphanumeric characters", ErrInvalidDevice)
	}
	if !d.Protocol.Valid() {
		return fmt.Errorf("%w: unsupported protocol %q", ErrInvalidDevice, d.Protocol)
	}
	if len(d.TimeSeriesConfigurations) > MaxTimeSeriesConfigurations {
		return fmt.Errorf("%w: at most %d time series configurations allowed", ErrInvalidDevice, MaxTimeSeriesConfigurations)
	}
	for _, c := range d.TimeSeriesConfigurations {
		if c.ValueField == "" {
			return fmt.Errorf("%w: time series value field is required", ErrInvalidDevice)
		}
	}
	return nil
}
