package referral

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/invitly/invitly/internal/middleware"
)

// Handler exposes the profile and invite code activation endpoints. Both
// require an authenticated user supplied by the JWT middleware.
type Handler struct {
	svc *Service
}

// NewHandler builds the referral HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Profile returns the caller's phone, invite code, activated code and the
// phones of users who activated the caller's code.
func (h *Handler) Profile(c *fiber.Ctx) error {
	u, ok := middleware.UserFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}

	profile, err := h.svc.ProfileFor(c.UserContext(), u)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load profile")
	}

	var activated any
	if profile.ActivatedInviteCode != "" {
		activated = profile.ActivatedInviteCode
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"phone":                 profile.Phone,
		"invite_code":           profile.InviteCode,
		"activated_invite_code": activated,
		"referrals":             profile.Referrals,
	})
}

type activateRequest struct {
	InviteCode string `json:"invite_code"`
}

// Activate records another user's invite code for the caller.
func (h *Handler) Activate(c *fiber.Ctx) error {
	u, ok := middleware.UserFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}

	var req activateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.Activate(c.UserContext(), u, req.InviteCode); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyActivated),
			errors.Is(err, ErrInvalidInput),
			errors.Is(err, ErrCodeNotFound),
			errors.Is(err, ErrSelfActivation):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not activate invite code")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"detail": "invite code activated"})
}
