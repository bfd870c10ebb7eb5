package domain

// PortHint is the preferred port for one named port of a reservation
type PortHint struct {
	Hint int `json:"hint" example:"3001"`
}

// ReserveRequest asks the daemon for one port, a set of named ports, or a count of ports
type ReserveRequest struct {
	Name  string              `json:"name" example:"greeter"`
	Hint  int                 `json:"hint,omitempty" example:"3000"`
	Lease int64               `json:"lease,omitempty" example:"600"` // seconds
	PID   int                 `json:"pid,omitempty" example:"4242"`
	Ports map[string]PortHint `json:"ports,omitempty" swaggertype:"object"`
	Count int                 `json:"count,omitempty" example:"0"`
}

// ReleaseRequest releases a whole reservation, or a single named port of it
type ReleaseRequest struct {
	Name     string `json:"name" example:"greeter"`
	PortName string `json:"portName,omitempty" example:"hmr"`
}

// HeartbeatRequest renews the lease of a reservation
type HeartbeatRequest struct {
	Name string `json:"name" example:"greeter"`
}

// StatsRequest is a query over the lease audit log
type StatsRequest struct {
	Name    *string `json:"name" example:"greeter"`
	Action  *string `json:"action" example:"reserve"`
	From    *int64  `json:"from" example:"1732147200"`
	To      *int64  `json:"to" example:"1732233600"`
	GroupBy *string `json:"group_by" example:"action"`
}

// StatsGroupings lists the accepted group_by values
var StatsGroupings = []string{"hour", "day", "name", "action", "port_name"}
