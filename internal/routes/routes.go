package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/unihub/walletsession/internal/config"
	"github.com/unihub/walletsession/internal/middleware"
	"github.com/unihub/walletsession/internal/notification"
	"github.com/unihub/walletsession/internal/session"
	"github.com/unihub/walletsession/internal/walletuser"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and the wallet session routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.IsDev() {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	sealer, err := newSealer(d.Cfg)
	if err != nil {
		return err
	}

	var sessionRepo session.Repository
	var userRepo walletuser.Repository
	if d.DB != nil {
		sessionRepo = session.NewPostgresRepository(d.DB)
		userRepo = walletuser.NewPostgresRepository(d.DB)
	} else {
		sessionRepo = session.NewMemoryRepository()
		userRepo = walletuser.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	sessionHandler := session.NewHandler(session.NewService(sessionRepo, sealer, notifier, d.Logger), d.Logger)
	userHandler := walletuser.NewHandler(walletuser.NewService(userRepo, d.Logger), d.Logger)

	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Cache:  d.Cache,
		TTL:    d.Cfg.IdempotencyTTL,
		Logger: d.Logger,
	})
	RegisterSessionRoutes(api, sessionHandler, idempotent)

	limiter := middleware.PhoneRateLimit(d.Cache, "get-or-create", d.Cfg.GetOrCreateRate, d.Logger)
	RegisterWalletUserRoutes(api, userHandler, limiter)

	return nil
}

// RegisterSessionRoutes mounts the session endpoints. Writes go through the
// idempotency middleware.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler, idempotent fiber.Handler) {
	g := r.Group("/wallet-session")
	g.Post("/store", idempotent, h.Store)
	g.Post("/refresh", idempotent, h.Refresh)
	g.Post("/logout", idempotent, h.Logout)
	g.Get("/:phoneNumber", h.Fetch)
}

// RegisterWalletUserRoutes mounts the wallet user endpoint behind the limiter.
func RegisterWalletUserRoutes(r fiber.Router, h *walletuser.Handler, limiter fiber.Handler) {
	r.Post("/wallet-user/get-or-create", limiter, h.GetOrCreate)
}

func newSealer(cfg config.Config) (session.Sealer, error) {
	if len(cfg.SealKey) == 0 {
		return session.PlainSealer(), nil
	}
	sealer, err := session.NewXChaChaSealer(cfg.SealKey)
	if err != nil {
		return nil, fmt.Errorf("session sealer: %w", err)
	}
	return sealer, nil
}
