package validations

import (
	"kucukaslan/necoport/domain"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// MaxPortCount is the largest count a single reserve request may ask for
	MaxPortCount = 64

	// MaxLeaseSeconds caps the lease a client may request (one day)
	MaxLeaseSeconds = 24 * 60 * 60
)

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Name is required")
	}
	return nil
}

func validHint(hint int) bool {
	return hint >= 0 && hint <= 65535
}

func ValidateReserveRequest(request *domain.ReserveRequest) error {
	if err := validName(request.Name); err != nil {
		return err
	}
	if !validHint(request.Hint) {
		return fiber.NewError(fiber.StatusBadRequest, "hint must be between 0 and 65535")
	}
	if request.Lease < 0 || request.Lease > MaxLeaseSeconds {
		return fiber.NewError(fiber.StatusBadRequest, "lease must be between 0 and 86400 seconds")
	}
	if request.PID < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "pid cannot be negative")
	}
	if request.Count < 0 || request.Count > MaxPortCount {
		return fiber.NewError(fiber.StatusBadRequest, "count must be between 0 and 64")
	}
	if len(request.Ports) > 0 && request.Count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ports and count cannot be combined")
	}
	if len(request.Ports) > MaxPortCount {
		return fiber.NewError(fiber.StatusBadRequest, "too many named ports")
	}
	for portName, hint := range request.Ports {
		if strings.TrimSpace(portName) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "port names cannot be empty")
		}
		if !validHint(hint.Hint) {
			return fiber.NewError(fiber.StatusBadRequest, "hint for "+portName+" must be between 0 and 65535")
		}
	}
	return nil
}

func ValidateReleaseRequest(request *domain.ReleaseRequest) error {
	return validName(request.Name)
}

func ValidateHeartbeatRequest(request *domain.HeartbeatRequest) error {
	return validName(request.Name)
}

func ValidateStatsRequest(request *domain.StatsRequest) error {
	if request.From != nil {
		// From timestamp must be a positive and not in the future
		if *request.From <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "from must be a positive integer")
		}
		if *request.From > time.Now().UTC().Unix() {
			return fiber.NewError(fiber.StatusBadRequest, "from cannot be in the future")
		}
	}
	if request.To != nil && *request.To <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "to must be a positive integer")
	}
	if request.From != nil && request.To != nil {
		if *request.From > *request.To {
			return fiber.NewError(fiber.StatusBadRequest, "from cannot be greater than to")
		}
	}

	if request.GroupBy != nil && !slices.Contains(domain.StatsGroupings, *request.GroupBy) {
		return fiber.NewError(fiber.StatusBadRequest, "group_by must be one of "+strings.Join(domain.StatsGroupings, ", "))
	}

	if request.Name != nil && strings.TrimSpace(*request.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty if provided")
	}

	return nil
}
