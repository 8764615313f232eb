package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fleetstock-backend/api/controllers"
	"github.com/angelmondragon/fleetstock-backend/api/middleware"
	"github.com/angelmondragon/fleetstock-backend/internal/auth"
	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/inventory"
	"github.com/angelmondragon/fleetstock-backend/internal/orders"
	"github.com/angelmondragon/fleetstock-backend/internal/otp"
	"github.com/angelmondragon/fleetstock-backend/internal/summary"
	"github.com/angelmondragon/fleetstock-backend/pkg/auth/session"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/metrics"
)

// RedisStore is the Redis surface the router needs: readiness and auth
// rate limiting.
type RedisStore interface {
	Ping(ctx context.Context) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService auth.Service,
	otpService otp.Service,
	inventoryService inventory.Service,
	ordersService orders.Service,
	fleetService fleets.Service,
	summaryService summary.Service,
	loc *time.Location,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ErrorDetail(cfg.App.ExposeErrorDetail()),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	var limiter interface {
		FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	}
	var redisPinger controllers.Pinger
	if redisStore != nil {
		limiter = redisStore
		redisPinger = redisStore
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		0,
	)
	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Get("/check-user", controllers.UserCheck(authService, logg))
			r.Post("/create-admin", controllers.UserCreateAdmin(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.UserLogin(authService, cfg.JWT, logg))
			r.Post("/logout", controllers.UserLogout(authService, cfg.JWT, logg))
			r.Post("/refresh-token", controllers.UserRefresh(authService, cfg.JWT, logg))
			r.Post("/reset-pin", controllers.UserResetPin(authService, logg))
			r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/reset-email", controllers.UserResetEmail(authService, logg))
		})

		r.Route("/otp", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(otpPolicy, limiter, logg)).Post("/send-otp", controllers.OTPSend(otpService, logg))
			r.Post("/verify-otp", controllers.OTPVerify(otpService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))

			r.Route("/inventory-item", func(r chi.Router) {
				r.Get("/get-items", controllers.InventoryList(inventoryService, logg))
				r.Get("/get-item/{id}", controllers.InventoryGet(inventoryService, logg))
				r.Post("/add-item", controllers.InventoryAdd(inventoryService, logg))
				r.Put("/edit-item/{id}", controllers.InventoryEdit(inventoryService, logg))
				r.Delete("/remove-item/{id}", controllers.InventoryRemove(inventoryService, logg))
			})
			r.Route("/assigned-item", func(r chi.Router) {
				r.Get("/assign-item", controllers.AssignedList(ordersService, logg))
				r.Post("/assign-item", controllers.AssignedOut(ordersService, logg))
				r.Post("/update-archive", controllers.AssignedRefreshArchive(ordersService, time.Now, logg))
			})
			r.Route("/modify-item", func(r chi.Router) {
				r.Put("/edit/{id}", controllers.ModifyEdit(ordersService, logg))
				r.Delete("/delete/{id}", controllers.ModifyDelete(ordersService, logg))
			})
			r.Get("/fleet/get-fleets", controllers.FleetList(fleetService, logg))
			r.Route("/summary", func(r chi.Router) {
				r.Get("/invoice", controllers.SummaryInvoice(summaryService, loc, logg))
				r.Get("/invoice/export", controllers.SummaryExport(summaryService, loc, logg))
			})
		})
	})

	return r
}
