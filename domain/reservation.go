package domain

import (
	"context"
	"sort"
	"time"
)

const (
	// DefaultPortName names the port of a single-port reservation
	DefaultPortName = "main"

	// ReservationVersion is stored with every reservation written by this daemon
	ReservationVersion = "2"
)

// Reservation is a named service holding one or more ports on a lease.
type Reservation struct {
	Name    string         `json:"name"`
	Ports   map[string]int `json:"ports"`
	PID     int            `json:"pid,omitempty"`
	Expires int64          `json:"expires"` // unix milliseconds
	Created int64          `json:"created"` // unix milliseconds
	Version string         `json:"version"`
}

// PortNames returns the port names in stable order.
func (r Reservation) PortNames() []string {
	names := make([]string, 0, len(r.Ports))
	for name := range r.Ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MainPort returns the "main" port, falling back to the first named port.
func (r Reservation) MainPort() int {
	if port, ok := r.Ports[DefaultPortName]; ok {
		return port
	}
	if names := r.PortNames(); len(names) > 0 {
		return r.Ports[names[0]]
	}
	return 0
}

// Expired reports whether the lease ran out before now.
func (r Reservation) Expired(now time.Time) bool {
	return r.Expires < now.UnixMilli()
}

// TTL is the remaining lease time relative to now.
func (r Reservation) TTL(now time.Time) time.Duration {
	return time.UnixMilli(r.Expires).Sub(now)
}

type LeaseAction string

const (
	ActionReserve   LeaseAction = "reserve"
	ActionRelease   LeaseAction = "release"
	ActionHeartbeat LeaseAction = "heartbeat"
	ActionExpire    LeaseAction = "expire"
	ActionReap      LeaseAction = "reap"
)

// LeaseEvent is one audit record of a port changing hands.
type LeaseEvent struct {
	Name      string
	PortName  string
	Port      int
	Action    LeaseAction
	PID       int
	Timestamp time.Time
}

// Events expands a reservation into one event per port.
func (r Reservation) Events(action LeaseAction, at time.Time) []LeaseEvent {
	events := make([]LeaseEvent, 0, len(r.Ports))
	for _, name := range r.PortNames() {
		events = append(events, LeaseEvent{
			Name:      r.Name,
			PortName:  name,
			Port:      r.Ports[name],
			Action:    action,
			PID:       r.PID,
			Timestamp: at,
		})
	}
	return events
}

type LeaseService interface {
	Reserve(ctx context.Context, request *ReserveRequest) (*ReserveResponse, error)
	Release(ctx context.Context, request *ReleaseRequest) error
	Heartbeat(ctx context.Context, request *HeartbeatRequest) error
	List(ctx context.Context) ([]ListEntry, error)
	Ports(ctx context.Context, name string) (*PortsResponse, error)
	Stats(ctx context.Context, request *StatsRequest) (*StatsResponse, error)
	CollectGarbage(ctx context.Context) (int, error)
}
