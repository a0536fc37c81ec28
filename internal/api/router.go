package api

import (
	"net/http"

	"github.com/dom/coinshelf/internal/api/handlers"
	"github.com/dom/coinshelf/internal/api/middleware"
	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/metrics"
	"github.com/dom/coinshelf/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, m *metrics.Metrics, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging(m))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	authHandler := handlers.NewAuthHandler(services.Auth)
	passwordHandler := handlers.NewPasswordHandler(services.Password)
	itemHandler := handlers.NewItemHandler(services.Item)
	linkHandler := handlers.NewPublicLinkHandler(services.PublicLink, cfg.FrontendURL)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	priceHandler := handlers.NewPriceHandler(services.Price)
	catalogHandler := handlers.NewCatalogHandler(services.Catalog)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot_password", passwordHandler.Forgot)
		r.Post("/reset_password", passwordHandler.Reset)

		r.Route("/prices/metals", func(r chi.Router) {
			r.Get("/", priceHandler.Metals)
			r.Get("/history", priceHandler.History)
		})
		r.Get("/public/{publicID}", linkHandler.View)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Get("/me", authHandler.Me)
			r.Post("/change_password", passwordHandler.Change)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
			})

			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemHandler.List)
				r.Post("/", itemHandler.Create)
				r.Post("/bulk_upload", itemHandler.BulkUpload)
				r.Delete("/clear_all", itemHandler.ClearAll)
				r.Get("/duplicates", itemHandler.Duplicates)
				r.Post("/merge", itemHandler.Merge)
				r.Get("/stats", itemHandler.Stats)
				r.Get("/{id}", itemHandler.Get)
				r.Put("/{id}", itemHandler.Update)
				r.Delete("/{id}", itemHandler.Delete)
				r.Post("/{id}/image_upload", itemHandler.ImageUpload)
			})

			r.Get("/catalog/search", catalogHandler.Search)

			r.Route("/public_collection_link", func(r chi.Router) {
				r.Post("/", linkHandler.Create)
				r.Get("/", linkHandler.Get)
				r.Delete("/", linkHandler.Revoke)
			})
		})
	})

	return r
}
