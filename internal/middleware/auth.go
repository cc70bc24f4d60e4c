package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/invitly/invitly/internal/auth"
	"github.com/invitly/invitly/internal/config"
	"github.com/invitly/invitly/internal/user"
)

const userLocalKey = "authenticated_user"

// JWTAuth returns a middleware that validates bearer access tokens and loads
// the authenticated user into the request context.
func JWTAuth(cfg config.Config, users *user.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)

		u, err := users.FindByID(c.UserContext(), sub)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		c.Locals(userLocalKey, u)
		return c.Next()
	}
}

// UserFromCtx extracts the authenticated user placed by JWTAuth.
func UserFromCtx(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(userLocalKey).(user.User)
	return u, ok
}
