package porter

import (
	"context"
	"errors"
	"fmt"
	"kucukaslan/necoport/domain"
	"log"
	"os"
	"sync"
	"time"
)

// ErrPortMismatch is returned when necoportd hands out a different port than the one
// the service is configured for.
var ErrPortMismatch = errors.New("necoportd assigned a different port")

const defaultHeartbeat = 5 * time.Minute

// Registration keeps a reservation alive with periodic heartbeats until Close.
type Registration struct {
	client *Client
	name   string
	ports  map[string]int
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Acquire reserves the ports described by request and starts heartbeating every
// interval. The pid defaults to the current process.
func Acquire(ctx context.Context, client *Client, request domain.ReserveRequest, interval time.Duration) (*Registration, error) {
	if request.PID == 0 {
		request.PID = os.Getpid()
	}

	resp, err := client.Reserve(request)
	if err != nil {
		return nil, err
	}

	ports := resp.Ports
	if len(ports) == 0 {
		ports = map[string]int{domain.DefaultPortName: resp.Port}
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Registration{
		client: client,
		name:   request.Name,
		ports:  ports,
		cancel: cancel,
	}
	r.wg.Add(1)
	go r.heartbeat(ctx, interval)
	return r, nil
}

// Register reserves port for name before the service binds it. Callers keep their
// configured port either way; a mismatch only means necoportd could not record it.
func Register(ctx context.Context, client *Client, name string, port int, interval time.Duration) (*Registration, error) {
	r, err := Acquire(ctx, client, domain.ReserveRequest{Name: name, Hint: port}, interval)
	if err != nil {
		return nil, err
	}

	if got := r.Port(); got != port {
		if err := r.Close(); err != nil {
			log.Printf("Porter: failed to release mismatched reservation: %v", err)
		}
		return nil, fmt.Errorf("%w: wanted %d, got %d", ErrPortMismatch, port, got)
	}

	log.Printf("Porter: %s Port %d GET! (%s)", domain.CatForPort(port), port, name)
	return r, nil
}

// WithPort reserves ports for the duration of fn and releases them afterwards.
func WithPort(ctx context.Context, client *Client, request domain.ReserveRequest, fn func(ports map[string]int) error) error {
	r, err := Acquire(ctx, client, request, defaultHeartbeat)
	if err != nil {
		return err
	}

	fnErr := fn(r.Ports())
	return errors.Join(fnErr, r.Close())
}

func (r *Registration) heartbeat(ctx context.Context, interval time.Duration) {
	defer r.wg.Done()
	if interval <= 0 {
		interval = defaultHeartbeat
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.client.Heartbeat(r.name); err != nil {
				log.Printf("Porter: heartbeat failed: %v", err)
			}
		}
	}
}

// Port is the main port of the reservation.
func (r *Registration) Port() int {
	return domain.Reservation{Ports: r.ports}.MainPort()
}

// Ports returns a copy of every reserved port by name.
func (r *Registration) Ports() map[string]int {
	ports := make(map[string]int, len(r.ports))
	for name, port := range r.ports {
		ports[name] = port
	}
	return ports
}

// Close stops the heartbeats and releases the reservation. Safe on a nil Registration.
func (r *Registration) Close() error {
	if r == nil {
		return nil
	}

	var err error
	r.once.Do(func() {
		r.cancel()
		r.wg.Wait()
		err = r.client.Release(domain.ReleaseRequest{Name: r.name})
		if err == nil {
			log.Printf("Porter: %s Ports %v released (%s)", domain.Cat(domain.MoodGoodbye), r.ports, r.name)
		}
	})
	return err
}
