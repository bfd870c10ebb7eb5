package porter

import (
	"context"
	"errors"
	"kucukaslan/necoport/domain"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDaemon answers the necoportd API from memory.
type fakeDaemon struct {
	mu         sync.Mutex
	assign     int
	reserved   map[string]domain.ReserveRequest
	released   []string
	heartbeats int
}

func startFakeDaemon(t *testing.T, assign int) (*fakeDaemon, string) {
	t.Helper()

	d := &fakeDaemon{assign: assign, reserved: map[string]domain.ReserveRequest{}}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Post("/reserve", func(c *fiber.Ctx) error {
		var req domain.ReserveRequest
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(domain.ErrorResponse{Error: "Name is required"})
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		d.reserved[req.Name] = req
		port := d.assign
		if port == 0 {
			port = req.Hint
		}
		return c.JSON(domain.ReserveResponse{Port: port, Ports: map[string]int{domain.DefaultPortName: port}, Lease: 600})
	})
	app.Post("/release", func(c *fiber.Ctx) error {
		var req domain.ReleaseRequest
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.reserved, req.Name)
		d.released = append(d.released, req.Name)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Post("/heartbeat", func(c *fiber.Ctx) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.heartbeats++
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/list", func(c *fiber.Ctx) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		entries := []domain.ListEntry{}
		for name, req := range d.reserved {
			entries = append(entries, domain.ListEntry{Name: name, Port: req.Hint, PID: req.PID, Alive: true})
		}
		return c.JSON(entries)
	})
	app.Get("/ports/:name", func(c *fiber.Ctx) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		req, ok := d.reserved[c.Params("name")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(domain.ErrorResponse{Error: "Service not found"})
		}
		return c.JSON(domain.PortsResponse{Name: req.Name, Ports: map[string]int{domain.DefaultPortName: req.Hint}, Alive: true})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return d, "http://" + ln.Addr().String()
}

func (d *fakeDaemon) snapshot() (map[string]domain.ReserveRequest, []string, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reserved := make(map[string]domain.ReserveRequest, len(d.reserved))
	for k, v := range d.reserved {
		reserved[k] = v
	}
	return reserved, append([]string(nil), d.released...), d.heartbeats
}

func TestClientRoundTrip(t *testing.T) {
	_, baseURL := startFakeDaemon(t, 0)
	client := NewClient(baseURL, time.Second)

	resp, err := client.Reserve(domain.ReserveRequest{Name: "web", Hint: 3005, PID: 42})
	require.NoError(t, err)
	assert.Equal(t, 3005, resp.Port)
	assert.Equal(t, int64(600), resp.Lease)

	entries, err := client.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "web", entries[0].Name)
	assert.Equal(t, 42, entries[0].PID)

	ports, err := client.Ports("web")
	require.NoError(t, err)
	assert.Equal(t, 3005, ports.Ports[domain.DefaultPortName])

	require.NoError(t, client.Heartbeat("web"))
	require.NoError(t, client.Release(domain.ReleaseRequest{Name: "web"}))

	_, err = client.Ports("web")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestClientStatusError(t *testing.T) {
	_, baseURL := startFakeDaemon(t, 0)
	client := NewClient(baseURL, time.Second)

	_, err := client.Reserve(domain.ReserveRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, fiber.StatusBadRequest, statusErr.Code)
	assert.Equal(t, "Name is required", statusErr.Message)
}

func TestClientDaemonUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := NewClient("http://"+addr, 200*time.Millisecond)
	_, err = client.Reserve(domain.ReserveRequest{Name: "web"})
	assert.Error(t, err)
}

func TestRegisterHeartbeatsAndReleases(t *testing.T) {
	daemon, baseURL := startFakeDaemon(t, 0)
	client := NewClient(baseURL, time.Second)

	reg, err := Register(context.Background(), client, "greeter", 3001, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3001, reg.Port())

	reserved, _, _ := daemon.snapshot()
	require.Contains(t, reserved, "greeter")
	assert.Equal(t, 3001, reserved["greeter"].Hint)
	assert.NotZero(t, reserved["greeter"].PID)

	require.Eventually(t, func() bool {
		_, _, beats := daemon.snapshot()
		return beats >= 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close())

	reserved, released, _ := daemon.snapshot()
	assert.NotContains(t, reserved, "greeter")
	assert.Equal(t, []string{"greeter"}, released)
}

func TestRegisterPortMismatch(t *testing.T) {
	daemon, baseURL := startFakeDaemon(t, 3999)
	client := NewClient(baseURL, time.Second)

	reg, err := Register(context.Background(), client, "greeter", 8000, time.Minute)
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, ErrPortMismatch)

	reserved, released, _ := daemon.snapshot()
	assert.Empty(t, reserved)
	assert.Equal(t, []string{"greeter"}, released)
}

func TestNilRegistrationClose(t *testing.T) {
	var reg *Registration
	assert.NoError(t, reg.Close())
}
