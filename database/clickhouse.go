package database

import (
	"context"
	"fmt"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/domain"
	"log"
	"time"

	"github.com/uptrace/go-clickhouse/ch"
)

var clickHouseDB *ch.DB

// InitClickHouse opens the lease audit database and creates its table
func InitClickHouse(cfg *config.ClickHouseConfig) error {
	// native protocol, no TLS
	db := ch.Connect(
		ch.WithDSN(cfg.GetClickHouseDSN()),
		ch.WithInsecure(true),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := InitLeaseEventsTable(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize lease_events table: %w", err)
	}

	clickHouseDB = db
	log.Println("ClickHouse connection established successfully")

	return nil
}

// CloseClickHouse closes the ClickHouse database connection
func CloseClickHouse() error {
	if clickHouseDB != nil {
		if err := clickHouseDB.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		clickHouseDB = nil
		log.Println("ClickHouse connection closed")
	}
	return nil
}

// InitLeaseEventsTable creates the lease_events table if it doesn't exist
func InitLeaseEventsTable(ctx context.Context, db *ch.DB) error {
	_, err := db.NewCreateTable().
		Model((*LeaseEvent)(nil)).
		Engine("MergeTree").
		Order("timestamp, name, port").
		IfNotExists().
		Exec(ctx)

	return err
}

// ClickHouseEnabled reports whether the audit log was initialized
func ClickHouseEnabled() bool {
	return clickHouseDB != nil
}

// ClickHouseHealthCheck verifies that the ClickHouse connection is alive
func ClickHouseHealthCheck(ctx context.Context) error {
	if clickHouseDB == nil {
		return fmt.Errorf("ClickHouse connection is not initialized")
	}
	return clickHouseDB.Ping(ctx)
}

func GetClickHouseDB() ClickHouseDB {
	return ClickHouseDB{clickHouseDB}
}

// LeaseEvent is the lease_events row
type LeaseEvent struct {
	ch.CHModel `ch:"table:lease_events,partition:toYYYYMMDD(timestamp)"`
	Name       string    `ch:"name,lc"`
	PortName   string    `ch:"port_name,lc"`
	Port       uint16    `ch:"port"`
	Action     string    `ch:"action,lc"`
	PID        int32     `ch:"pid"`
	Timestamp  time.Time `ch:"timestamp"`

	IngestedAt time.Time `ch:"ingested_at,default:now()"`
}

// LeaseEventColumnar is lease_events in columnar format for batch inserts
type LeaseEventColumnar struct {
	ch.CHModel `ch:"table:lease_events,partition:toYYYYMMDD(timestamp),columnar"`
	Name       []string    `ch:"name,lc"`
	PortName   []string    `ch:"port_name,lc"`
	Port       []uint16    `ch:"port"`
	Action     []string    `ch:"action,lc"`
	PID        []int32     `ch:"pid"`
	Timestamp  []time.Time `ch:"timestamp"`

	IngestedAt []time.Time `ch:"ingested_at,default:now()"`
}

type ClickHouseDB struct {
	*ch.DB
}

// NewLeaseEventColumns converts events to the columnar insert model.
func NewLeaseEventColumns(events []domain.LeaseEvent, ingestedAt time.Time) *LeaseEventColumnar {
	size := len(events)
	columns := &LeaseEventColumnar{
		Name:       make([]string, 0, size),
		PortName:   make([]string, 0, size),
		Port:       make([]uint16, 0, size),
		Action:     make([]string, 0, size),
		PID:        make([]int32, 0, size),
		Timestamp:  make([]time.Time, 0, size),
		IngestedAt: make([]time.Time, 0, size),
	}

	for _, event := range events {
		columns.Name = append(columns.Name, event.Name)
		columns.PortName = append(columns.PortName, event.PortName)
		columns.Port = append(columns.Port, uint16(event.Port))
		columns.Action = append(columns.Action, string(event.Action))
		columns.PID = append(columns.PID, int32(event.PID))
		columns.Timestamp = append(columns.Timestamp, event.Timestamp)
		columns.IngestedAt = append(columns.IngestedAt, ingestedAt)
	}
	return columns
}

// SaveLeaseEvents writes a batch of audit events with a single columnar insert
func (c ClickHouseDB) SaveLeaseEvents(ctx context.Context, events []domain.LeaseEvent) error {
	if c.DB == nil {
		return fmt.Errorf("database connection is nil")
	}
	if len(events) == 0 {
		return nil
	}

	_, err := c.DB.NewInsert().
		Model(NewLeaseEventColumns(events, time.Now())).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to columnar insert lease events: %w", err)
	}

	return nil
}

// StatResult is one bucket of the stats query
type StatResult struct {
	Bucket      string `ch:"bucket"`
	TotalEvents uint64 `ch:"total_events"`
	UniquePorts uint64 `ch:"unique_ports"`
}

// groupExpr maps a group_by value to its SQL expression. Only allowlisted
// values ever reach the query.
func groupExpr(groupBy *string) string {
	if groupBy == nil {
		return ""
	}
	switch *groupBy {
	case "hour":
		return "toString(toStartOfHour(timestamp))"
	case "day":
		return "toString(toStartOfDay(timestamp))"
	case "name":
		return "name"
	case "action":
		return "action"
	case "port_name":
		return "port_name"
	default:
		return ""
	}
}

// GetLeaseStats aggregates the audit log
func (c ClickHouseDB) GetLeaseStats(ctx context.Context, request domain.StatsRequest) ([]domain.StatResult, error) {
	if c.DB == nil {
		return nil, domain.ErrAuditDisabled
	}

	group := groupExpr(request.GroupBy)

	query := c.NewSelect().TableExpr("lease_events")
	if group != "" {
		query = query.ColumnExpr("? AS bucket", ch.Safe(group))
	} else {
		query = query.ColumnExpr("'total' AS bucket")
	}
	query = query.
		ColumnExpr("count() AS total_events").
		ColumnExpr("uniqExact(port) AS unique_ports")

	if request.Name != nil && *request.Name != "" {
		query = query.Where("name = ?", *request.Name)
	}
	if request.Action != nil && *request.Action != "" {
		query = query.Where("action = ?", *request.Action)
	}
	if request.From != nil {
		query = query.Where("timestamp >= ?", time.Unix(*request.From, 0))
	}
	if request.To != nil {
		query = query.Where("timestamp <= ?", time.Unix(*request.To, 0))
	}
	if group != "" {
		query = query.GroupExpr(group).OrderExpr("bucket ASC")
	}

	var rows []StatResult
	if err := query.Scan(ctx, &rows); err != nil {
		return nil, err
	}

	results := make([]domain.StatResult, len(rows))
	for i, row := range rows {
		results[i] = domain.StatResult{
			Bucket:      row.Bucket,
			TotalEvents: row.TotalEvents,
			UniquePorts: row.UniquePorts,
		}
	}
	return results, nil
}
