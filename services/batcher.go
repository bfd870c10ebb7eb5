package services

import (
	"context"
	"errors"
	"kucukaslan/necoport/domain"
	"log"
	"sync"
	"time"
)

var (
	// ErrBufferFull is returned when the audit buffer channel is full
	ErrBufferFull = errors.New("audit buffer is full")
)

// LeaseEventSink persists batches of audit events
type LeaseEventSink interface {
	SaveLeaseEvents(ctx context.Context, events []domain.LeaseEvent) error
}

// AuditRecorder accepts lease events without blocking the caller
type AuditRecorder interface {
	Record(events ...domain.LeaseEvent)
}

// AuditBatcher batches lease events and flushes them to the sink
type AuditBatcher struct {
	eventChan     chan domain.LeaseEvent
	batchSize     int
	flushInterval time.Duration
	sink          LeaseEventSink
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	currentBatch  []domain.LeaseEvent
}

// NewAuditBatcher creates a new AuditBatcher instance
func NewAuditBatcher(capacity, batchSize, flushIntervalSeconds int, sink LeaseEventSink) *AuditBatcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	interval := time.Duration(flushIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AuditBatcher{
		eventChan:     make(chan domain.LeaseEvent, capacity),
		batchSize:     batchSize,
		flushInterval: interval,
		sink:          sink,
		ctx:           ctx,
		cancel:        cancel,
		currentBatch:  make([]domain.LeaseEvent, 0, batchSize),
	}
}

// Start launches the background worker goroutine
func (b *AuditBatcher) Start() {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = true
	b.mu.Unlock()

	b.wg.Add(1)
	go b.worker()
	log.Println("AuditBatcher started")
}

// Enqueue adds an event to the buffer channel (non-blocking)
// Returns ErrBufferFull if the channel is full
func (b *AuditBatcher) Enqueue(event domain.LeaseEvent) error {
	select {
	case b.eventChan <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Record enqueues events, dropping the ones that do not fit
func (b *AuditBatcher) Record(events ...domain.LeaseEvent) {
	for _, event := range events {
		if err := b.Enqueue(event); err != nil {
			log.Printf("AuditBatcher: dropped %s event for %s: %v", event.Action, event.Name, err)
		}
	}
}

func (b *AuditBatcher) worker() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			b.flushRemaining()
			return

		case event := <-b.eventChan:
			b.mu.Lock()
			b.currentBatch = append(b.currentBatch, event)
			shouldFlush := len(b.currentBatch) >= b.batchSize
			b.mu.Unlock()

			if shouldFlush {
				b.flushBatch()
			}

		case <-ticker.C:
			b.mu.Lock()
			hasEvents := len(b.currentBatch) > 0
			b.mu.Unlock()

			if hasEvents {
				b.flushBatch()
			}
		}
	}
}

func (b *AuditBatcher) flushBatch() {
	b.mu.Lock()
	if len(b.currentBatch) == 0 {
		b.mu.Unlock()
		return
	}

	batch := make([]domain.LeaseEvent, len(b.currentBatch))
	copy(batch, b.currentBatch)
	b.currentBatch = b.currentBatch[:0]
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := b.sink.SaveLeaseEvents(ctx, batch); err != nil {
		log.Printf("AuditBatcher: Failed to flush batch of %d events: %v", len(batch), err)
		return
	}

	log.Printf("AuditBatcher: Flushed batch of %d events", len(batch))
}

// flushRemaining drains the channel into one final batch during shutdown
func (b *AuditBatcher) flushRemaining() {
	drained := 0
	for {
		select {
		case event := <-b.eventChan:
			b.mu.Lock()
			b.currentBatch = append(b.currentBatch, event)
			b.mu.Unlock()
			drained++
		default:
			if drained > 0 {
				log.Printf("AuditBatcher: Drained %d events from channel during shutdown", drained)
			}
			b.flushBatch()
			return
		}
	}
}

// Shutdown stops the worker after flushing everything still buffered
func (b *AuditBatcher) Shutdown() error {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return nil
	}
	b.isRunning = false
	b.mu.Unlock()

	log.Println("AuditBatcher: Initiating graceful shutdown...")
	b.cancel()
	b.wg.Wait()
	log.Println("AuditBatcher: Shutdown complete")
	return nil
}

// GetBufferSize returns the current number of events in the buffer channel
func (b *AuditBatcher) GetBufferSize() int {
	return len(b.eventChan)
}

// GetPendingSize returns the current number of events in the pending batch
func (b *AuditBatcher) GetPendingSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.currentBatch)
}

type discardRecorder struct{}

func (discardRecorder) Record(...domain.LeaseEvent) {}

// DiscardRecorder drops every event; used when the audit log is disabled
var DiscardRecorder AuditRecorder = discardRecorder{}
