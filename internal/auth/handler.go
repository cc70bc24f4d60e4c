package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the phone verification endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

// RequestCode issues a verification code for a phone number. The code is
// returned in the response as the delivery-channel stand-in.
func (h *Handler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	code, err := h.svc.RequestCode(c.UserContext(), req.Phone)
	if err != nil {
		if errors.Is(err, ErrInvalidPhone) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not issue verification code")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"detail": "code sent",
		"code":   code,
	})
}

type verifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyCode checks the submitted code and returns a token pair on success.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	_, pair, err := h.svc.VerifyCode(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInvalidCode):
			return fiber.NewError(http.StatusBadRequest, "invalid code")
		default:
			return fiber.NewError(http.StatusInternalServerError, "verification failed")
		}
	}
	return c.Status(http.StatusOK).JSON(pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
