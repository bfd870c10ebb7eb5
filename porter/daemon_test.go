package porter

import (
	"context"
	"kucukaslan/necoport/api"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/database"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/greeter"
	"kucukaslan/necoport/services"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDaemon serves the real necoportd routes over a miniredis backed store.
func startDaemon(t *testing.T) *Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	service, err := services.NewLeaseService(
		database.ReservationRedis{Client: rdb},
		&config.DaemonConfig{RangeStart: 3000, RangeEnd: 3999, LeaseSeconds: 600},
		nil, nil,
	)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	api.RegisterRoutes(app, api.NewLeaseHandler(service))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return NewClient("http://"+ln.Addr().String(), time.Second)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestRegisterWithDaemonKeepsConfiguredPort(t *testing.T) {
	client := startDaemon(t)
	port := freePort(t)

	reg, err := Register(context.Background(), client, "greeter", port, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, port, reg.Port())

	ports, err := client.Ports("greeter")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{domain.DefaultPortName: port}, ports.Ports)
	assert.True(t, ports.Alive)

	// the greeter binds its port only after the reservation
	ln, err := greeter.Listen(port)
	require.NoError(t, err)
	defer ln.Close()

	entries, err := client.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, port, entries[0].Port)

	require.NoError(t, reg.Close())
	_, err = client.Ports("greeter")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestRegisterWithDaemonAfterBindMismatches(t *testing.T) {
	client := startDaemon(t)

	port := freePort(t)
	held, err := greeter.Listen(port)
	require.NoError(t, err)
	defer held.Close()

	reg, err := Register(context.Background(), client, "greeter", port, time.Minute)
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, ErrPortMismatch)

	entries, err := client.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithPortAgainstDaemon(t *testing.T) {
	client := startDaemon(t)
	mainPort := freePort(t)

	request := domain.ReserveRequest{
		Name: "vite",
		Ports: map[string]domain.PortHint{
			"main": {Hint: mainPort},
			"hmr":  {},
		},
	}

	err := WithPort(context.Background(), client, request, func(ports map[string]int) error {
		assert.Equal(t, mainPort, ports["main"])
		assert.NotZero(t, ports["hmr"])
		assert.NotEqual(t, ports["main"], ports["hmr"])

		held, err := client.Ports("vite")
		require.NoError(t, err)
		assert.Equal(t, ports, held.Ports)
		return nil
	})
	require.NoError(t, err)

	_, err = client.Ports("vite")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestWithPortReleasesOnError(t *testing.T) {
	client := startDaemon(t)

	err := WithPort(context.Background(), client, domain.ReserveRequest{Name: "job", Hint: freePort(t)}, func(map[string]int) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = client.Ports("job")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}
