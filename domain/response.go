package domain

import (
	"kucukaslan/necoport/buildinfo"
	"time"
)

// ErrorResponse is returned by the daemon for every failed request
type ErrorResponse struct {
	Error string `json:"error" example:"Name is required"`
	Cat   string `json:"cat" example:"(=･ω･=)? Need a name!"`
}

// ReserveResponse carries the assigned ports
type ReserveResponse struct {
	Port  int            `json:"port" example:"3000"`
	Ports map[string]int `json:"ports,omitempty" swaggertype:"object"`
	Lease int64          `json:"lease" example:"600"`
}

// ListEntry describes one reservation in the /list output
type ListEntry struct {
	Name    string         `json:"name" example:"greeter"`
	Port    int            `json:"port" example:"3000"`
	Ports   map[string]int `json:"ports" swaggertype:"object"`
	Expires int64          `json:"expires" example:"1732233600000"`
	PID     int            `json:"pid,omitempty" example:"4242"`
	Cat     string         `json:"cat" example:"(=^･ω･^=)"`
	Alive   bool           `json:"alive" example:"true"`
	Version string         `json:"version" example:"2"`
}

// PortsResponse describes the ports of one service
type PortsResponse struct {
	Name    string         `json:"name" example:"greeter"`
	Ports   map[string]int `json:"ports" swaggertype:"object"`
	Expires int64          `json:"expires" example:"1732233600000"`
	Alive   bool           `json:"alive" example:"true"`
}

// StatsResponse represents aggregated lease audit data
type StatsResponse struct {
	Success bool         `json:"success" example:"true"`
	Message string       `json:"message" example:"Stats retrieved successfully"`
	Stats   []StatResult `json:"stats"`
}

type StatResult struct {
	// Bucket holds the group value (e.g. "2024-08-25 10:00:00" or "reserve")
	Bucket      string `json:"bucket"`
	TotalEvents uint64 `json:"total_events"`
	UniquePorts uint64 `json:"unique_ports"`
}

// HealthResponse represents the health status of the daemon
type HealthResponse struct {
	Status    string              `json:"status" example:"healthy"`
	Timestamp time.Time           `json:"timestamp" example:"2025-11-22T10:00:00Z"`
	BuildInfo buildinfo.Info      `json:"buildInfo"`
	Services  ServiceHealthStatus `json:"services"`
}

// ServiceHealthStatus represents the health status of dependent services
type ServiceHealthStatus struct {
	Redis      ServiceStatus `json:"redis"`
	ClickHouse ServiceStatus `json:"clickhouse"`
}

// ServiceStatus represents the status of a single service
type ServiceStatus struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty" example:""`
}
