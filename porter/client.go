// Package porter is the client side of necoportd: it reserves, renews and
// releases ports on behalf of a service.
package porter

import (
	"encoding/json"
	"errors"
	"fmt"
	"kucukaslan/necoport/domain"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const defaultTimeout = 3 * time.Second

// StatusError is a non-2xx answer from the daemon.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("necoportd returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: baseURL, timeout: timeout}
}

func (c *Client) Reserve(request domain.ReserveRequest) (*domain.ReserveResponse, error) {
	var resp domain.ReserveResponse
	if err := c.do(fiber.Post(c.baseURL+"/reserve").JSON(request), &resp); err != nil {
		return nil, fmt.Errorf("reserve %s: %w", request.Name, err)
	}
	return &resp, nil
}

func (c *Client) Release(request domain.ReleaseRequest) error {
	if err := c.do(fiber.Post(c.baseURL+"/release").JSON(request), nil); err != nil {
		return fmt.Errorf("release %s: %w", request.Name, err)
	}
	return nil
}

func (c *Client) Heartbeat(name string) error {
	if err := c.do(fiber.Post(c.baseURL+"/heartbeat").JSON(domain.HeartbeatRequest{Name: name}), nil); err != nil {
		return fmt.Errorf("heartbeat %s: %w", name, err)
	}
	return nil
}

func (c *Client) List() ([]domain.ListEntry, error) {
	var entries []domain.ListEntry
	if err := c.do(fiber.Get(c.baseURL+"/list"), &entries); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return entries, nil
}

// Ports returns the ports held by name, or domain.ErrReservationNotFound.
func (c *Client) Ports(name string) (*domain.PortsResponse, error) {
	var resp domain.PortsResponse
	err := c.do(fiber.Get(c.baseURL+"/ports/"+url.PathEscape(name)), &resp)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == fiber.StatusNotFound {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ports %s: %w", name, err)
	}
	return &resp, nil
}

func (c *Client) do(agent *fiber.Agent, out any) error {
	agent.Timeout(c.timeout)
	if err := agent.Parse(); err != nil {
		return err
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		var errResp domain.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return &StatusError{Code: code, Message: errResp.Error}
		}
		return &StatusError{Code: code, Message: utils.StatusMessage(code)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
