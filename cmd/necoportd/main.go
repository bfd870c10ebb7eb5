package main

import (
	"kucukaslan/necoport/api"
	"kucukaslan/necoport/buildinfo"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/database"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/services"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "kucukaslan/necoport/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title necoportd Port Reservation API
// @version 1.0
// @description Hands out leased ports from a local range to named services, with a ClickHouse audit log and Redis backed reservations
// @BasePath /
// @schemes http

const (
	idleTimeout     = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// newApp wires the HTTP surface of the daemon
func newApp(handler api.LeaseHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "necoportd",
		IdleTimeout:           idleTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: os.Stderr,
	}))

	// redirect to swagger docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/", fiber.StatusMovedPermanently)
	})

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api.RegisterRoutes(app, handler)
	return app
}

func main() {
	buildinfo.SetStartTime(time.Now())
	log.Printf("Starting necoportd\n%s", buildinfo.GetInfo())

	cfg, err := config.LoadDaemon()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	var (
		audit   services.AuditRecorder
		stats   services.StatsReader
		batcher *services.AuditBatcher
	)
	if cfg.ClickHouse.Enabled {
		if err := database.InitClickHouse(&cfg.ClickHouse); err != nil {
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		batcher = services.NewAuditBatcher(
			cfg.ClickHouse.BufferChannelCapacity,
			cfg.ClickHouse.BatchSize,
			cfg.ClickHouse.FlushIntervalSeconds,
			database.GetClickHouseDB(),
		)
		batcher.Start()
		audit = batcher
		stats = database.GetClickHouseDB()
	} else {
		log.Println("ClickHouse disabled, lease audit log is off")
	}

	leaseService, err := services.NewLeaseService(database.GetRedisClient(), cfg, audit, stats)
	if err != nil {
		log.Fatalf("Failed to initialize LeaseService: %v", err)
	}

	collector := services.NewCollector(leaseService, cfg.GCIntervalSeconds)
	collector.Start()

	app := newApp(api.NewLeaseHandler(leaseService))

	// Listen from a different goroutine
	go func() {
		log.Printf("%s necoportd listening on %s, managing %d ports (%d-%d)",
			domain.Cat(domain.MoodHappy), cfg.Addr(), cfg.RangeSize(), cfg.RangeStart, cfg.RangeEnd)
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Printf("%s Gracefully shutting down...", domain.Cat(domain.MoodGoodbye))
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Running cleanup tasks...")
	collector.Shutdown()

	// flushes remaining audit events
	if batcher != nil {
		if err := batcher.Shutdown(); err != nil {
			log.Printf("Error shutting down audit batcher: %v", err)
		}
	}

	if err := database.CloseClickHouse(); err != nil {
		log.Printf("Error closing ClickHouse: %v", err)
	}

	if err := database.CloseRedis(); err != nil {
		log.Printf("Error closing Redis: %v", err)
	}

	log.Println("necoportd was successfully shut down.")
}
