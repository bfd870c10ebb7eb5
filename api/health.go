package api

import (
	"context"
	"kucukaslan/necoport/buildinfo"
	"kucukaslan/necoport/database"
	"kucukaslan/necoport/domain"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	healthTimeout = 3 * time.Second
)

// checkDependency reports the status of one backing store and whether the daemon can
// run with it. A disabled store never makes the daemon unhealthy.
func checkDependency(ctx context.Context, enabled bool, ping func(context.Context) error) (domain.ServiceStatus, bool) {
	if !enabled {
		return domain.ServiceStatus{Status: statusDisabled}, true
	}
	if err := ping(ctx); err != nil {
		return domain.ServiceStatus{Status: statusUnhealthy, Message: err.Error()}, false
	}
	return domain.ServiceStatus{Status: statusHealthy}, true
}

// HealthCheck reports whether necoportd can hand out ports
// @Summary Daemon health
// @Description Pings the Redis reservation store (required) and the ClickHouse lease audit log (optional). A disabled audit log is reported as "disabled" and keeps the daemon healthy.
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse "Reservations can be served"
// @Success 503 {object} domain.HealthResponse "A required store is unreachable"
// @Router /health [get]
func HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	redisStatus, redisOK := checkDependency(ctx, true, database.RedisHealthCheck)
	auditStatus, auditOK := checkDependency(ctx, database.ClickHouseEnabled(), database.ClickHouseHealthCheck)

	response := domain.HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now(),
		BuildInfo: buildinfo.GetInfo(),
		Services: domain.ServiceHealthStatus{
			Redis:      redisStatus,
			ClickHouse: auditStatus,
		},
	}

	code := fiber.StatusOK
	if !redisOK || !auditOK {
		response.Status = statusUnhealthy
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(response)
}
