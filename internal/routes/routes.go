package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/invitly/invitly/internal/auth"
	"github.com/invitly/invitly/internal/config"
	"github.com/invitly/invitly/internal/middleware"
	"github.com/invitly/invitly/internal/notification"
	"github.com/invitly/invitly/internal/otp"
	"github.com/invitly/invitly/internal/referral"
	"github.com/invitly/invitly/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside of dev
// environments both backing stores are mandatory; in dev, missing stores
// fall back to in-memory implementations.
func Setup(app *fiber.App, d Deps) error {
	if !config.IsDev(d.Cfg.Env) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Backing stores
	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}

	var codeStore otp.Store
	if d.Cache != nil {
		codeStore = otp.NewRedisStore(d.Cache, d.Cfg.CodeTTL)
	} else {
		codeStore = otp.NewMemoryStore(d.Cfg.CodeTTL)
	}

	// Services and handlers
	userSvc := user.NewService(userRepo)
	sender := notification.NewLoggerSender(d.Logger)
	authSvc := auth.NewService(d.Cfg, userSvc, codeStore, sender)
	authHandler := auth.NewHandler(authSvc)
	referralSvc := referral.NewService(userSvc)
	referralHandler := referral.NewHandler(referralSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, authHandler)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, userSvc)
	protected := api.Group("", jwtmw)
	RegisterReferralRoutes(protected, referralHandler)

	return nil
}
