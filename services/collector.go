package services

import (
	"context"
	"kucukaslan/necoport/domain"
	"log"
	"sync"
	"time"
)

// Collector periodically removes expired and orphaned reservations
type Collector struct {
	service  domain.LeaseService
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewCollector(service domain.LeaseService, intervalSeconds int) *Collector {
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		service:  service,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Collector) Start() {
	c.once.Do(func() {
		c.wg.Add(1)
		go c.run()
		log.Printf("Collector started, sweeping every %s", c.interval)
	})
}

func (c *Collector) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep runs one garbage collection pass
func (c *Collector) Sweep() {
	ctx, cancel := context.WithTimeout(c.ctx, c.interval)
	defer cancel()

	removed, err := c.service.CollectGarbage(ctx)
	if err != nil {
		log.Printf("Collector: sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Collector: removed %d reservations", removed)
	}
}

func (c *Collector) Shutdown() {
	c.cancel()
	c.wg.Wait()
	log.Println("Collector: Shutdown complete")
}
