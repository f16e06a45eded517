package controller

import (
	"cybot-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports whether an optional dependency is reachable.
type HealthCheck func() error

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) IHealthController {
	return &healthController{checks: checks}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	status := map[string]string{"app": "ok"}
	for name, check := range c.checks {
		if err := check(); err != nil {
			status[name] = err.Error()
			continue
		}
		status[name] = "ok"
	}
	return ctx.JSON(serverutils.SuccessResponse("Service is healthy", status))
}
