package main

import (
	"context"
	"kucukaslan/necoport/buildinfo"
	"kucukaslan/necoport/config"
	"kucukaslan/necoport/greeter"
	"kucukaslan/necoport/porter"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

func main() {
	buildinfo.SetStartTime(time.Now())
	log.Printf("Starting greeter\n%s", buildinfo.GetInfo())

	if err := run(); err != nil {
		log.Fatalf("Failed to start greeter: %v", err)
	}
}

func run() error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	srv := greeter.New(cfg.Port, greeter.WithAccessLog(os.Stderr))

	// reserve before binding: necoportd only grants ports it can bind itself
	registration := register(cfg)

	ln, err := greeter.Listen(cfg.Port)
	if err != nil {
		_ = registration.Close()
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		_ = registration.Close()
		return err
	case <-c:
	}

	log.Println("Gracefully shutting down...")
	if err := registration.Close(); err != nil {
		log.Printf("Error releasing port reservation: %v", err)
	}
	if err := srv.Shutdown(shutdownTimeout); err != nil {
		return err
	}
	log.Println("Greeter was successfully shut down.")
	return nil
}

// register records the greeter with necoportd when NECOPORTD_URL is set. Registration
// is advisory: the greeter keeps its configured port whatever the daemon answers.
func register(cfg *config.Config) *porter.Registration {
	if !cfg.Porter.Enabled() {
		return nil
	}

	client := porter.NewClient(cfg.Porter.URL, time.Duration(cfg.Porter.TimeoutSeconds)*time.Second)
	heartbeat := time.Duration(cfg.Porter.HeartbeatSeconds) * time.Second
	registration, err := porter.Register(context.Background(), client, cfg.Porter.ServiceName, cfg.Port, heartbeat)
	if err != nil {
		log.Printf("Porter: necoportd registration skipped, serving on %d anyway: %v", cfg.Port, err)
		return nil
	}
	return registration
}
