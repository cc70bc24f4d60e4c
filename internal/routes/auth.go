package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invitly/invitly/internal/auth"
)

// RegisterAuthRoutes wires the phone verification endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/request-code", h.RequestCode)
	group.Post("/verify-code", h.VerifyCode)
	group.Post("/refresh", h.Refresh)
}
