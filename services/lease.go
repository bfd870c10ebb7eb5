package services

import (
	"context"
	"errors"
	"fmt"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/domain"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"
)

var _ domain.LeaseService = &leaseService{}

// ReservationStore persists reservations; the Redis store expires them with their lease
type ReservationStore interface {
	GetReservation(ctx context.Context, name string) (*domain.Reservation, error)
	SaveReservation(ctx context.Context, reservation domain.Reservation) error
	DeleteReservation(ctx context.Context, name string) error
	ListReservations(ctx context.Context) ([]domain.Reservation, error)
}

// StatsReader answers aggregate queries over the audit log
type StatsReader interface {
	GetLeaseStats(ctx context.Context, request domain.StatsRequest) ([]domain.StatResult, error)
}

type leaseService struct {
	store      ReservationStore
	audit      AuditRecorder
	stats      StatsReader
	rangeStart int
	rangeEnd   int
	lease      time.Duration

	portFree     func(port int) bool
	processAlive func(pid int) bool
	now          func() time.Time

	// serializes allocation so two services never get the same port
	mu sync.Mutex
}

type LeaseOption func(*leaseService)

// WithPortCheck replaces the bind check used to confirm a port is free.
func WithPortCheck(check func(port int) bool) LeaseOption {
	return func(s *leaseService) { s.portFree = check }
}

// WithProcessCheck replaces the liveness check for reservation owners.
func WithProcessCheck(check func(pid int) bool) LeaseOption {
	return func(s *leaseService) { s.processAlive = check }
}

func WithClock(now func() time.Time) LeaseOption {
	return func(s *leaseService) { s.now = now }
}

// NewLeaseService returns a domain.LeaseService over the given store. audit and stats
// may be nil when the audit log is disabled.
func NewLeaseService(store ReservationStore, cfg *config.DaemonConfig, audit AuditRecorder, stats StatsReader, opts ...LeaseOption) (domain.LeaseService, error) {
	if store == nil {
		return nil, fmt.Errorf("reservation store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("daemon config cannot be nil")
	}
	if cfg.RangeStart <= 0 || cfg.RangeEnd > 65535 || cfg.RangeStart > cfg.RangeEnd {
		return nil, fmt.Errorf("invalid port range %d-%d", cfg.RangeStart, cfg.RangeEnd)
	}
	if audit == nil {
		audit = DiscardRecorder
	}

	lease := time.Duration(cfg.LeaseSeconds) * time.Second
	if lease <= 0 {
		lease = 10 * time.Minute
	}

	srv := &leaseService{
		store:        store,
		audit:        audit,
		stats:        stats,
		rangeStart:   cfg.RangeStart,
		rangeEnd:     cfg.RangeEnd,
		lease:        lease,
		portFree:     portFree,
		processAlive: processAlive,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv, nil
}

func (s *leaseService) leaseFor(seconds int64) time.Duration {
	if seconds <= 0 {
		return s.lease
	}
	return time.Duration(seconds) * time.Second
}

// alive reports whether a reservation still holds its ports.
func (s *leaseService) alive(r domain.Reservation) bool {
	return !r.Expired(s.now()) && s.processAlive(r.PID)
}

func (s *leaseService) Reserve(ctx context.Context, request *domain.ReserveRequest) (*domain.ReserveResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lease := s.leaseFor(request.Lease)
	leaseSeconds := int64(lease / time.Second)

	existing, err := s.store.GetReservation(ctx, request.Name)
	switch {
	case err == nil:
		if s.alive(*existing) {
			log.Printf("LeaseService: %s %s already has ports %v", domain.CatForPort(existing.MainPort()), request.Name, existing.Ports)
			return reserveResponse(*existing, leaseSeconds), nil
		}
		log.Printf("LeaseService: %s process %d died, releasing ports for %s", domain.Cat(domain.MoodSleepy), existing.PID, request.Name)
		if err := s.store.DeleteReservation(ctx, request.Name); err != nil {
			return nil, fmt.Errorf("failed to drop dead reservation: %w", err)
		}
		s.audit.Record(existing.Events(domain.ActionReap, s.now())...)
	case errors.Is(err, domain.ErrReservationNotFound):
	default:
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	held, err := s.heldPorts(ctx)
	if err != nil {
		return nil, err
	}

	ports, err := s.allocate(request, held)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reservation := domain.Reservation{
		Name:    request.Name,
		Ports:   ports,
		PID:     request.PID,
		Expires: now.Add(lease).UnixMilli(),
		Created: now.UnixMilli(),
		Version: domain.ReservationVersion,
	}
	if err := s.store.SaveReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}
	s.audit.Record(reservation.Events(domain.ActionReserve, now)...)

	log.Printf("LeaseService: %s Ports %v assigned to %s", domain.CatForPort(reservation.MainPort()), ports, request.Name)
	return reserveResponse(reservation, leaseSeconds), nil
}

func reserveResponse(r domain.Reservation, leaseSeconds int64) *domain.ReserveResponse {
	return &domain.ReserveResponse{
		Port:  r.MainPort(),
		Ports: r.Ports,
		Lease: leaseSeconds,
	}
}

// heldPorts collects the ports of every live reservation.
func (s *leaseService) heldPorts(ctx context.Context) (map[int]bool, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	held := make(map[int]bool)
	for _, r := range reservations {
		if !s.alive(r) {
			continue
		}
		for _, port := range r.Ports {
			held[port] = true
		}
	}
	return held, nil
}

func (s *leaseService) allocate(request *domain.ReserveRequest, held map[int]bool) (map[string]int, error) {
	switch {
	case len(request.Ports) > 0:
		hints := make(map[string]int, len(request.Ports))
		for name, hint := range request.Ports {
			hints[name] = hint.Hint
		}
		return s.allocateNamed(hints, held)
	case request.Count > 0:
		ports := make(map[string]int, request.Count)
		for i := 0; i < request.Count; i++ {
			port, err := s.nextFree(held)
			if err != nil {
				return nil, err
			}
			ports[strconv.Itoa(i)] = port
			held[port] = true
		}
		return ports, nil
	default:
		return s.allocateNamed(map[string]int{domain.DefaultPortName: request.Hint}, held)
	}
}

// allocateNamed honours every usable hint first, then fills the rest from the range.
func (s *leaseService) allocateNamed(hints map[string]int, held map[int]bool) (map[string]int, error) {
	names := make([]string, 0, len(hints))
	for name := range hints {
		names = append(names, name)
	}
	sort.Strings(names)

	ports := make(map[string]int, len(hints))
	for _, name := range names {
		if hint := hints[name]; s.usable(hint, held) {
			ports[name] = hint
			held[hint] = true
		}
	}
	for _, name := range names {
		if _, ok := ports[name]; ok {
			continue
		}
		port, err := s.nextFree(held)
		if err != nil {
			return nil, err
		}
		ports[name] = port
		held[port] = true
	}
	return ports, nil
}

// usable reports whether a hint can be handed out. Hints may lie outside the
// managed range; the range only bounds ports the daemon picks itself.
func (s *leaseService) usable(port int, held map[int]bool) bool {
	return port > 0 && port <= 65535 && !held[port] && s.portFree(port)
}

func (s *leaseService) nextFree(held map[int]bool) (int, error) {
	for port := s.rangeStart; port <= s.rangeEnd; port++ {
		if !held[port] && s.portFree(port) {
			return port, nil
		}
	}
	return 0, domain.ErrNoFreePorts
}

func (s *leaseService) Release(ctx context.Context, request *domain.ReleaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, err := s.store.GetReservation(ctx, request.Name)
	if errors.Is(err, domain.ErrReservationNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reservation: %w", err)
	}

	now := s.now()

	if request.PortName != "" {
		port, ok := reservation.Ports[request.PortName]
		if !ok {
			return nil
		}
		released := domain.Reservation{
			Name:  reservation.Name,
			Ports: map[string]int{request.PortName: port},
			PID:   reservation.PID,
		}
		delete(reservation.Ports, request.PortName)

		if len(reservation.Ports) == 0 {
			err = s.store.DeleteReservation(ctx, request.Name)
		} else {
			err = s.store.SaveReservation(ctx, *reservation)
		}
		if err != nil {
			return fmt.Errorf("failed to release port %s: %w", request.PortName, err)
		}
		s.audit.Record(released.Events(domain.ActionRelease, now)...)
		log.Printf("LeaseService: %sﾉ Port %d (%s) released by %s", domain.CatForPort(port), port, request.PortName, request.Name)
		return nil
	}

	if err := s.store.DeleteReservation(ctx, request.Name); err != nil {
		return fmt.Errorf("failed to release %s: %w", request.Name, err)
	}
	s.audit.Record(reservation.Events(domain.ActionRelease, now)...)
	log.Printf("LeaseService: %sﾉ All ports released by %s: %v", domain.CatForPort(reservation.MainPort()), request.Name, reservation.Ports)
	return nil
}

func (s *leaseService) Heartbeat(ctx context.Context, request *domain.HeartbeatRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, err := s.store.GetReservation(ctx, request.Name)
	if errors.Is(err, domain.ErrReservationNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reservation: %w", err)
	}

	now := s.now()
	reservation.Expires = now.Add(s.lease).UnixMilli()
	if err := s.store.SaveReservation(ctx, *reservation); err != nil {
		return fmt.Errorf("failed to renew lease: %w", err)
	}
	s.audit.Record(reservation.Events(domain.ActionHeartbeat, now)...)
	return nil
}

func (s *leaseService) List(ctx context.Context) ([]domain.ListEntry, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].Name < reservations[j].Name
	})

	entries := make([]domain.ListEntry, 0, len(reservations))
	for _, r := range reservations {
		version := r.Version
		if version == "" {
			version = "1"
		}
		entries = append(entries, domain.ListEntry{
			Name:    r.Name,
			Port:    r.MainPort(),
			Ports:   r.Ports,
			Expires: r.Expires,
			PID:     r.PID,
			Cat:     domain.CatForPort(r.MainPort()),
			Alive:   s.alive(r),
			Version: version,
		})
	}
	return entries, nil
}

func (s *leaseService) Ports(ctx context.Context, name string) (*domain.PortsResponse, error) {
	reservation, err := s.store.GetReservation(ctx, name)
	if err != nil {
		return nil, err
	}

	return &domain.PortsResponse{
		Name:    reservation.Name,
		Ports:   reservation.Ports,
		Expires: reservation.Expires,
		Alive:   s.alive(*reservation),
	}, nil
}

func (s *leaseService) Stats(ctx context.Context, request *domain.StatsRequest) (*domain.StatsResponse, error) {
	if s.stats == nil {
		return nil, domain.ErrAuditDisabled
	}

	stats, err := s.stats.GetLeaseStats(ctx, *request)
	if err != nil {
		return &domain.StatsResponse{
			Success: false,
			Message: "Failed to retrieve stats: " + err.Error(),
		}, err
	}

	return &domain.StatsResponse{
		Success: true,
		Message: "Stats retrieved successfully",
		Stats:   stats,
	}, nil
}

// CollectGarbage drops expired reservations and those whose process died.
// It returns how many reservations were removed.
func (s *leaseService) CollectGarbage(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	now := s.now()
	removed := 0
	for _, r := range reservations {
		var action domain.LeaseAction
		switch {
		case r.Expired(now):
			action = domain.ActionExpire
			log.Printf("LeaseService: %szzZ Ports expired for %s: %v", domain.Cat(domain.MoodSleepy), r.Name, r.Ports)
		case !s.processAlive(r.PID):
			action = domain.ActionReap
			log.Printf("LeaseService: %s Process %d died, releasing ports for %s", domain.Cat(domain.MoodConfused), r.PID, r.Name)
		default:
			continue
		}

		if err := s.store.DeleteReservation(ctx, r.Name); err != nil {
			return removed, fmt.Errorf("failed to remove reservation %s: %w", r.Name, err)
		}
		s.audit.Record(r.Events(action, now)...)
		removed++
	}
	return removed, nil
}
