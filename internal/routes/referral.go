package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invitly/invitly/internal/referral"
)

// RegisterReferralRoutes wires the authenticated profile and activation endpoints.
func RegisterReferralRoutes(r fiber.Router, h *referral.Handler) {
	r.Get("/profile", h.Profile)
	r.Post("/activate-invite-code", h.Activate)
}
