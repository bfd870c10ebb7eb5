//go:build unix

package main

import (
	"io"
	"kucukaslan/necoport/api"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/database"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/greeter"
	"kucukaslan/necoport/porter"
	"kucukaslan/necoport/services"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDaemon(t *testing.T) string {
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
	return "http://" + ln.Addr().String()
}

func TestRunRegistersServesAndStopsOnSignal(t *testing.T) {
	daemonURL := startDaemon(t)

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := free.Addr().(*net.TCPAddr).Port
	require.NoError(t, free.Close())

	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("NECOPORTD_URL", daemonURL)
	t.Setenv("NECOPORT_SERVICE", "greeter-under-test")

	done := make(chan error, 1)
	go func() {
		done <- run()
	}()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/anything")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, greeter.Greeting(port), string(body))

	client := porter.NewClient(daemonURL, time.Second)
	ports, err := client.Ports("greeter-under-test")
	require.NoError(t, err)
	assert.Equal(t, port, ports.Ports[domain.DefaultPortName], "the greeter keeps and registers its configured port")
	assert.True(t, ports.Alive)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after SIGINT")
	}

	_, err = client.Ports("greeter-under-test")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestRunServesWhenDaemonIsDown(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	daemonAddr := free.Addr().String()
	require.NoError(t, free.Close())

	gl, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := gl.Addr().(*net.TCPAddr).Port
	require.NoError(t, gl.Close())

	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("NECOPORTD_URL", "http://"+daemonAddr)
	t.Setenv("NECOPORT_TIMEOUT_SECONDS", "1")

	done := make(chan error, 1)
	go func() {
		done <- run()
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after SIGTERM")
	}
}
