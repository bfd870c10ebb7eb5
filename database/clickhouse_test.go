package database

import (
	"context"
	"kucukaslan/necoport/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeaseEventColumns(t *testing.T) {
	at := time.Unix(1732233600, 0)
	ingested := at.Add(time.Second)
	events := []domain.LeaseEvent{
		{Name: "web", PortName: "main", Port: 3000, Action: domain.ActionReserve, PID: 10, Timestamp: at},
		{Name: "web", PortName: "hmr", Port: 3001, Action: domain.ActionRelease, PID: 10, Timestamp: at},
	}

	columns := NewLeaseEventColumns(events, ingested)

	assert.Equal(t, []string{"web", "web"}, columns.Name)
	assert.Equal(t, []string{"main", "hmr"}, columns.PortName)
	assert.Equal(t, []uint16{3000, 3001}, columns.Port)
	assert.Equal(t, []string{"reserve", "release"}, columns.Action)
	assert.Equal(t, []int32{10, 10}, columns.PID)
	assert.Equal(t, []time.Time{at, at}, columns.Timestamp)
	assert.Equal(t, []time.Time{ingested, ingested}, columns.IngestedAt)
}

func TestGroupExpr(t *testing.T) {
	group := func(s string) *string { return &s }

	assert.Equal(t, "", groupExpr(nil))
	assert.Equal(t, "toString(toStartOfHour(timestamp))", groupExpr(group("hour")))
	assert.Equal(t, "action", groupExpr(group("action")))
	assert.Equal(t, "", groupExpr(group("1; DROP TABLE lease_events")))

	for _, g := range domain.StatsGroupings {
		assert.NotEmpty(t, groupExpr(group(g)), g)
	}
}

func TestClickHouseNotInitialized(t *testing.T) {
	db := ClickHouseDB{}
	ctx := context.Background()

	require.Error(t, db.SaveLeaseEvents(ctx, []domain.LeaseEvent{{Name: "web"}}))

	_, err := db.GetLeaseStats(ctx, domain.StatsRequest{})
	assert.ErrorIs(t, err, domain.ErrAuditDisabled)

	assert.False(t, ClickHouseEnabled())
	assert.Error(t, ClickHouseHealthCheck(ctx))
}
