package theoryaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	adminpayments "github.com/mwalimuclement/theory-access/internal/http/handlers/admin/paymentlist"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/auth/adminlogin"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/auth/login"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/auth/logout"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/health"
	mypayments "github.com/mwalimuclement/theory-access/internal/http/handlers/me/paymentlist"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/me/profile"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/me/testlist"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/payment/initiate"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/payment/verify"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/plans/planlist"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/testsession/finish"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/testsession/start"
	"github.com/mwalimuclement/theory-access/internal/http/middlewarectx"
	"github.com/mwalimuclement/theory-access/internal/lib/jwt"
	accessservice "github.com/mwalimuclement/theory-access/internal/services/access"
	paymentservice "github.com/mwalimuclement/theory-access/internal/services/payment"
	testservice "github.com/mwalimuclement/theory-access/internal/services/testsession"
	"github.com/mwalimuclement/theory-access/internal/sessions"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	paymentSvc *paymentservice.Service,
	accessSvc *accessservice.Service,
	testSvc *testservice.Service,
	tokens jwt.Maker,
	sessionStore *sessions.Store,
	dbReady health.Checker,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/payments", initiate.New(logger, paymentSvc).ServeHTTP)
		r.Get("/payments/{id}", verify.New(logger, paymentSvc).ServeHTTP)
		r.Get("/plans", planlist.New(logger).ServeHTTP)
		r.Post("/login", login.New(logger, accessSvc).ServeHTTP)
		r.Post("/admin/login", adminlogin.New(logger, accessSvc).ServeHTTP)
		r.Get("/health", health.New(logger, dbReady).ServeHTTP)

		// Группа с аутентификацией по сессионному токену
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(tokens, sessionStore, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, accessSvc).ServeHTTP)
			r.Get("/me", profile.New(logger, accessSvc).ServeHTTP)
			r.Get("/me/payments", mypayments.New(logger, paymentSvc).ServeHTTP)
			r.Get("/me/tests", testlist.New(logger, testSvc).ServeHTTP)

			// Сессии тестов требуют действующего окна подписки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AccessWindowMiddleware(logger, accessSvc))
				r.Post("/tests", start.New(logger, testSvc).ServeHTTP)
				r.Put("/tests/{id}", finish.New(logger, testSvc).ServeHTTP)
			})

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/admin/payments", adminpayments.New(logger, paymentSvc).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
