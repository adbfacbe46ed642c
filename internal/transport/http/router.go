package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/materio/backend/internal/application/listing"
	"github.com/materio/backend/internal/application/matchmaking"
	"github.com/materio/backend/internal/application/phoneverify"
	"github.com/materio/backend/internal/application/profile"
	"github.com/materio/backend/internal/config"
	"github.com/materio/backend/internal/transport/http/handler"
	appmiddleware "github.com/materio/backend/internal/transport/http/middleware"
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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the OTP endpoints so a
	// single IP cannot farm SMS sends or brute-force codes.
	otpRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	phoneSvc := phoneverify.NewService(phoneverify.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		ProfileRepo:      deps.ProfileRepo,
		SMSSender:        deps.SMSSender,
	})
	matchSvc := matchmaking.NewService(matchmaking.ServiceDeps{
		ListingRepo:  deps.ListingRepo,
		ProfileRepo:  deps.ProfileRepo,
		BookmarkRepo: deps.BookmarkRepo,
	})
	listingSvc := listing.NewService(listing.ServiceDeps{
		ListingRepo: deps.ListingRepo,
		ProfileRepo: deps.ProfileRepo,
		FileStore:   deps.S3Store,
	})
	profileSvc := profile.NewService(profile.ServiceDeps{
		ProfileRepo:  deps.ProfileRepo,
		AddressRepo:  deps.AddressRepo,
		BookmarkRepo: deps.BookmarkRepo,
		ListingRepo:  deps.ListingRepo,
	})

	healthH := handler.NewHealthHandler()
	phoneH := handler.NewPhoneVerificationHandler(phoneSvc)
	matchH := handler.NewMatchHandler(matchSvc)
	listingH := handler.NewListingHandler(listingSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	categoryH := handler.NewCategoryHandler(deps.CategoryRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/listings", listingH.Search)
		r.Get("/listings/{id}", listingH.Get)
		r.Get("/listings/{id}/files", listingH.FileURL)
		r.With(otpRL.Limit).Post("/phone-verification/request", phoneH.RequestCode)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(otpRL.Limit).Post("/phone-verification/verify", phoneH.VerifyCode)
			r.Post("/matches", matchH.Find)

			r.Get("/profile", profileH.Me)
			r.Put("/profile", profileH.Update)
			r.Get("/profile/addresses", profileH.ListAddresses)
			r.Post("/profile/addresses", profileH.CreateAddress)
			r.Delete("/profile/addresses/{id}", profileH.DeleteAddress)
			r.Get("/profile/bookmarks", profileH.ListBookmarks)
			r.Post("/profile/bookmarks", profileH.AddBookmark)
			r.Delete("/profile/bookmarks/{id}", profileH.RemoveBookmark)

			r.Get("/listings/mine", listingH.ListMine)
			r.Post("/listings", listingH.Create)
			r.Put("/listings/{id}", listingH.Update)
			r.Delete("/listings/{id}", listingH.Delete)
			r.Post("/listings/{id}/publish", listingH.Publish)
			r.Post("/listings/{id}/archive", listingH.Archive)
			r.Post("/listings/{id}/images", listingH.UploadImage)
			r.Post("/listings/{id}/certifications", listingH.UploadCertification)
			r.Delete("/listings/{id}/files", listingH.DeleteFile)
		})
	})

	return r
}
