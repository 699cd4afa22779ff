package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/application/catalog"
	"github.com/storefront-api/internal/application/override"
	"github.com/storefront-api/internal/application/product"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/transport/http/handler"
	appmiddleware "github.com/storefront-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 1 request/second, burst of 5 — enough for a human retyping their email,
	// not for an enumeration loop.
	otpRL := appmiddleware.NewRateLimiter(rate.Limit(1), 5)

	authSvc := auth.NewService(auth.ServiceDeps{
		Secret:      cfg.SessionSecret,
		AdminEmails: cfg.AdminEmails,
		Mailer:      deps.Mailer,
		OTPLimiter:  deps.OTPLimiter,
	})
	catalogSvc := catalog.NewService(deps.Blob)
	productSvc := product.NewService(deps.Blob, catalogSvc)
	overrideSvc := override.NewService(deps.Blob, productSvc)

	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	catalogH := handler.NewCatalogHandler(catalogSvc)
	productH := handler.NewProductHandler(productSvc)
	overrideH := handler.NewOverrideHandler(overrideSvc)
	uploadH := handler.NewUploadHandler(productSvc, deps.Blob)
	testEmailH := handler.NewTestEmailHandler(deps.Mailer, cfg.AdminEmails)
	healthH := handler.NewHealthHandler(authSvc, deps.Blob, cfg.SessionSecret != "" && len(cfg.AdminEmails) > 0)
	syncH := handler.NewSyncTokenHandler(authSvc, deps.SyncTokens)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/catalog", catalogH.List)
		r.Get("/overrides", catalogH.ListOverrides)
		r.With(otpRL.Limit).Post("/auth/request-otp", authH.RequestOTP)
		r.Post("/auth/verify-otp", authH.VerifyOTP)
		r.Get("/auth/me", authH.Me)
		r.Post("/auth/logout", authH.Logout)
		r.Post("/sync-tokens", syncH.Exchange)

		// Diagnostics stay outside the gate: reporting why a caller is not an
		// admin is part of the job.
		r.Get("/admin/health", healthH.Check)

		// ── Admin routes ─────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAdmin(authSvc))

			r.Post("/admin/product", productH.Create)
			r.Put("/admin/product", productH.Update)
			r.Delete("/admin/product", productH.Delete)
			r.Post("/admin/upload", uploadH.Upload)
			r.Delete("/admin/upload", uploadH.Delete)
			r.Post("/admin/override", overrideH.Set)
			r.Delete("/admin/override", overrideH.Clear)
			r.Post("/admin/test-email", testEmailH.Send)
		})
	})

	return r
}
