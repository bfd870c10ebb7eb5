package api

import (
	"errors"
	"kucukaslan/necoport/domain"
	"kucukaslan/necoport/validations"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var _ LeaseHandler = &leaseHandler{nil}

type leaseHandler struct {
	leaseService domain.LeaseService
}

func errorJSON(ctx *fiber.Ctx, status int, message string, mood domain.Mood) error {
	return ctx.Status(status).JSON(domain.ErrorResponse{
		Error: message,
		Cat:   domain.Cat(mood),
	})
}

// validationError answers 400 with the validator's message
func validationError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return errorJSON(ctx, fiberErr.Code, fiberErr.Message, domain.MoodConfused)
	}
	return errorJSON(ctx, fiber.StatusBadRequest, "Validation failed: "+err.Error(), domain.MoodConfused)
}

// serviceError maps lease service errors to status codes
func serviceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoFreePorts):
		return errorJSON(ctx, fiber.StatusServiceUnavailable, "No free ports available", domain.MoodSad)
	case errors.Is(err, domain.ErrReservationNotFound):
		return errorJSON(ctx, fiber.StatusNotFound, "Service not found", domain.MoodConfused)
	case errors.Is(err, domain.ErrAuditDisabled):
		return errorJSON(ctx, fiber.StatusServiceUnavailable, "Lease audit log is disabled", domain.MoodSleepy)
	default:
		log.Printf("API: %s %s failed: %v", ctx.Method(), ctx.Path(), err)
		return errorJSON(ctx, fiber.StatusInternalServerError, "Internal server error: "+err.Error(), domain.MoodSad)
	}
}

// PostReserve handles port reservations
// @Summary Reserve ports
// @Description Reserve a single port, a set of named ports or a count of ports for a service. Returns the existing reservation when the service already holds one.
// @Tags Leases
// @Accept json
// @Produce json
// @Param reservation body domain.ReserveRequest true "Reservation request"
// @Success 200 {object} domain.ReserveResponse "Ports reserved"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 503 {object} domain.ErrorResponse "No free ports available"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /reserve [post]
func (h leaseHandler) PostReserve(ctx *fiber.Ctx) error {
	var req domain.ReserveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), domain.MoodConfused)
	}

	if err := validations.ValidateReserveRequest(&req); err != nil {
		return validationError(ctx, err)
	}

	resp, err := h.leaseService.Reserve(ctx.UserContext(), &req)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// PostRelease handles port releases
// @Summary Release ports
// @Description Release one named port of a service, or every port it holds
// @Tags Leases
// @Accept json
// @Param release body domain.ReleaseRequest true "Release request"
// @Success 204 "Released"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /release [post]
func (h leaseHandler) PostRelease(ctx *fiber.Ctx) error {
	var req domain.ReleaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), domain.MoodConfused)
	}

	if err := validations.ValidateReleaseRequest(&req); err != nil {
		return validationError(ctx, err)
	}

	if err := h.leaseService.Release(ctx.UserContext(), &req); err != nil {
		return serviceError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// PostHeartbeat renews a lease
// @Summary Renew a lease
// @Description Extend the lease of a service by the default lease duration
// @Tags Leases
// @Accept json
// @Param heartbeat body domain.HeartbeatRequest true "Heartbeat request"
// @Success 204 "Renewed"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /heartbeat [post]
func (h leaseHandler) PostHeartbeat(ctx *fiber.Ctx) error {
	var req domain.HeartbeatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), domain.MoodConfused)
	}

	if err := validations.ValidateHeartbeatRequest(&req); err != nil {
		return validationError(ctx, err)
	}

	if err := h.leaseService.Heartbeat(ctx.UserContext(), &req); err != nil {
		return serviceError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetList lists every reservation
// @Summary List reservations
// @Tags Leases
// @Produce json
// @Success 200 {array} domain.ListEntry "Reservations"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /list [get]
func (h leaseHandler) GetList(ctx *fiber.Ctx) error {
	entries, err := h.leaseService.List(ctx.UserContext())
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(entries)
}

// GetPorts returns the ports of one service
// @Summary Ports of a service
// @Tags Leases
// @Produce json
// @Param name path string true "Service name"
// @Success 200 {object} domain.PortsResponse "Ports"
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /ports/{name} [get]
func (h leaseHandler) GetPorts(ctx *fiber.Ctx) error {
	resp, err := h.leaseService.Ports(ctx.UserContext(), ctx.Params("name"))
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// GetStats retrieves aggregated lease events
// @Summary GET lease audit stats
// @Description Query the lease audit log with filtering and grouping
// @Tags Stats
// @Produce json
// @Param name query string false "Service name filter"
// @Param action query string false "Action filter (reserve, release, heartbeat, expire, reap)"
// @Param from query int false "Start timestamp (Unix seconds)"
// @Param to query int false "End timestamp (Unix seconds)"
// @Param group_by query string false "Group by field (hour, day, name, action, port_name)"
// @Success 200 {object} domain.StatsResponse "Stats retrieved successfully"
// @Failure 400 {object} domain.ErrorResponse "Invalid request"
// @Failure 503 {object} domain.ErrorResponse "Audit log disabled"
// @Failure 500 {object} domain.StatsResponse "Internal server error"
// @Router /stats [get]
func (h leaseHandler) GetStats(ctx *fiber.Ctx) error {
	var req domain.StatsRequest

	if name := ctx.Query("name"); name != "" {
		req.Name = &name
	}
	if action := ctx.Query("action"); action != "" {
		req.Action = &action
	}

	if fromStr := ctx.Query("from"); fromStr != "" {
		from, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, "Invalid 'from' parameter: "+err.Error(), domain.MoodConfused)
		}
		req.From = &from
	}

	if toStr := ctx.Query("to"); toStr != "" {
		to, err := strconv.ParseInt(toStr, 10, 64)
		if err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, "Invalid 'to' parameter: "+err.Error(), domain.MoodConfused)
		}
		req.To = &to
	}

	if groupBy := ctx.Query("group_by"); groupBy != "" {
		req.GroupBy = &groupBy
	}

	if err := validations.ValidateStatsRequest(&req); err != nil {
		return validationError(ctx, err)
	}

	resp, err := h.leaseService.Stats(ctx.UserContext(), &req)
	if err != nil {
		if resp != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(resp)
		}
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

func NewLeaseHandler(leaseService domain.LeaseService) LeaseHandler {
	return &leaseHandler{leaseService: leaseService}
}
