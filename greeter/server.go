// Package greeter implements the single-endpoint server: every request, whatever
// its method, path, headers or body, gets the same plain-text greeting.
package greeter

import (
	"fmt"
	"io"
	"kucukaslan/necoport/domain"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RuntimeName is announced in every greeting
const RuntimeName = "Go"

const idleTimeout = 5 * time.Second

// Greeting returns the response body for the given port.
func Greeting(port int) string {
	return fmt.Sprintf("Hello from %s! Running on port %d\n", RuntimeName, port)
}

// URL is the address announced at startup.
func URL(port int) string {
	return fmt.Sprintf("http://localhost:%d/", port)
}

type Server struct {
	port      int
	body      string
	app       *fiber.App
	announce  io.Writer
	accessLog io.Writer
}

type Option func(*Server)

// WithAnnounceWriter redirects the startup line, stdout by default.
func WithAnnounceWriter(w io.Writer) Option {
	return func(s *Server) {
		s.announce = w
	}
}

// WithAccessLog enables per-request logging to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// New builds a server answering for port. The port is fixed for the lifetime of the server.
func New(port int, opts ...Option) *Server {
	s := &Server{
		port:     port,
		body:     Greeting(port),
		announce: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "greeter",
		IdleTimeout:           idleTimeout,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	if s.accessLog != nil {
		s.app.Use(logger.New(logger.Config{
			Output: s.accessLog,
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	// catch-all: no routing, every method and path lands here
	s.app.Use(s.Handle)

	return s
}

func (s *Server) Port() int {
	return s.port
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Handle(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return c.Status(fiber.StatusOK).SendString(s.body)
}

// Listen binds the greeter address on all interfaces.
func Listen(port int) (net.Listener, error) {
	addr := ":" + strconv.Itoa(port)
	if port < 0 || port > 65535 {
		return nil, &domain.BindError{Addr: addr, Err: domain.ErrPortOutOfRange}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &domain.BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Serve announces the server and blocks serving ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if _, err := fmt.Fprintf(s.announce, "Server running at %s\n", URL(s.port)); err != nil {
		log.Printf("Greeter: failed to write startup message: %v", err)
	}
	return s.app.Listener(ln)
}

// Start binds the configured port and serves it.
func (s *Server) Start() error {
	ln, err := Listen(s.port)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
