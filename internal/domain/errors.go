package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDeviceNotFound      = fmt.Errorf("device %w", ErrNotFound)
	ErrDeviceAlreadyExists = errors.New("device with this access token already exists")
	ErrInvalidDevice       = errors.New("invalid device")

	ErrInvalidPayload = errors.New("invalid payload")

	ErrDeletionNotAllowed = errors.New("deleting device data is not allowed")
)
