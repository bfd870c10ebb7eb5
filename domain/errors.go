package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPortOutOfRange is returned for port values outside 0-65535
	ErrPortOutOfRange = errors.New("port must be between 0 and 65535")

	// ErrNoFreePorts is returned when every port in the managed range is taken
	ErrNoFreePorts = errors.New("no free ports available")

	// ErrReservationNotFound is returned when a service has no reservation
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAuditDisabled is returned by stats queries when ClickHouse is not configured
	ErrAuditDisabled = errors.New("lease audit log is disabled")
)

// BindError is the fatal startup failure of a listener that could not acquire its address.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
