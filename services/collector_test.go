package services

import (
	"context"
	"errors"
	"kucukaslan/necoport/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingService struct {
	domain.LeaseService
	calls atomic.Int32
	err   error
}

func (c *countingService) CollectGarbage(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestCollectorSweepsPeriodically(t *testing.T) {
	service := &countingService{}
	c := NewCollector(service, 1)
	c.Start()
	c.Start()

	assert.Eventually(t, func() bool { return service.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	c.Shutdown()

	calls := service.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, service.calls.Load())
}

func TestCollectorSweepRemovesGarbage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Reserve(ctx, &domain.ReserveRequest{Name: "web", Lease: 1})
	require.NoError(t, err)
	f.now = f.now.Add(5 * time.Second)

	c := NewCollector(f.service, 60)
	c.Sweep()

	_, err = f.store.GetReservation(ctx, "web")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestCollectorSweepSurvivesErrors(t *testing.T) {
	service := &countingService{err: errors.New("redis down")}
	c := NewCollector(service, 60)

	assert.NotPanics(t, c.Sweep)
	assert.Equal(t, int32(1), service.calls.Load())
}
