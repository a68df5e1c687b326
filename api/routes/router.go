package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maisonnoor/boutique-backend/api/controllers"
	"github.com/maisonnoor/boutique-backend/api/middleware"
	authsvc "github.com/maisonnoor/boutique-backend/internal/auth"
	cartsvc "github.com/maisonnoor/boutique-backend/internal/cart"
	catalogsvc "github.com/maisonnoor/boutique-backend/internal/catalog"
	contentsvc "github.com/maisonnoor/boutique-backend/internal/content"
	currencysvc "github.com/maisonnoor/boutique-backend/internal/currency"
	wishlistsvc "github.com/maisonnoor/boutique-backend/internal/wishlist"
	"github.com/maisonnoor/boutique-backend/pkg/config"
	"github.com/maisonnoor/boutique-backend/pkg/db"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	"github.com/maisonnoor/boutique-backend/pkg/logger"
	"github.com/maisonnoor/boutique-backend/pkg/metrics"
	"github.com/maisonnoor/boutique-backend/pkg/redis"
	"github.com/maisonnoor/boutique-backend/pkg/storage/gcs"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          redis.Pinger
	GCS            gcs.Pinger
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Auth      authsvc.Service
	Directory *authsvc.Directory
	Catalog   catalogsvc.Service
	Cart      cartsvc.Service
	Wishlist  wishlistsvc.Service
	Currency  currencysvc.Service
	Content   contentsvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis, d.GCS))
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// Storefront surface. Every route here is public; the principal, when a
	// token is present, is resolved so carts and profiles attach to the
	// account instead of the guest id.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ResolvePrincipal(d.Auth, logg))
		r.Use(middleware.Ownership())

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(d.Catalog, logg))
			r.Get("/search", controllers.CatalogSearch(d.Catalog, logg))
			r.Get("/{slug}", controllers.CatalogProduct(d.Catalog, logg))
		})

		r.Route("/currencies", func(r chi.Router) {
			r.Get("/", controllers.CurrencyList(d.Currency))
			r.Get("/rates", controllers.CurrencyRates(d.Currency, logg))
			r.Get("/convert", controllers.CurrencyConvert(d.Currency, logg))
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/homepage", controllers.HomepageFetch(d.Content, logg))
			r.Get("/offers", controllers.OffersActive(d.Content, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
			r.Post("/items", controllers.CartAdd(d.Cart, d.Catalog, logg))
			r.Patch("/items/{productId}", controllers.CartSetQuantity(d.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(d.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(d.Wishlist, d.Catalog, logg))
			r.Delete("/", controllers.WishlistClear(d.Wishlist, logg))
			r.Post("/items", controllers.WishlistAdd(d.Wishlist, d.Catalog, logg))
			r.Post("/toggle", controllers.WishlistToggle(d.Wishlist, d.Catalog, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemove(d.Wishlist, logg))
			r.Put("/privacy", controllers.WishlistSetPrivacy(d.Wishlist, logg))
			r.Get("/shared/{token}", controllers.WishlistShared(d.Wishlist, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Get("/session", controllers.AuthSession())
			r.Post("/reset-password", controllers.AuthResetPassword(d.Auth, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(d.Auth, logg))
			r.Patch("/", controllers.ProfileUpdate(d.Auth, logg))
		})
	})

	// The admin sign-in lives outside the guarded group: there is no session
	// to present yet.
	r.Post("/api/admin/v1/auth/login", controllers.AdminAuthLogin(d.Auth, logg))

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Auth, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

		r.Post("/auth/logout", controllers.AuthLogout(d.Auth, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(d.Catalog, logg))
			r.Post("/", controllers.AdminCreateProduct(d.Catalog, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(d.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(d.Catalog, logg))
			r.Post("/upload-url", controllers.AdminProductUploadURL(d.Catalog, logg))
		})

		r.Put("/content/{section}", controllers.AdminUpdateSection(d.Content, logg))

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", controllers.AdminListOffers(d.Content, logg))
			r.Post("/", controllers.AdminCreateOffer(d.Content, logg))
			r.Put("/{offerId}", controllers.AdminUpdateOffer(d.Content, logg))
			r.Delete("/{offerId}", controllers.AdminDeleteOffer(d.Content, logg))
		})

		r.Route("/admins", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleSuperAdmin, logg))
			r.Get("/", controllers.AdminsList(d.Directory, logg))
			r.Post("/", controllers.AdminsGrant(d.Directory, logg))
			r.Delete("/{userId}", controllers.AdminsRevoke(d.Directory, logg))
		})
	})

	return r
}
