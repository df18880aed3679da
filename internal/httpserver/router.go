package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/service/checkout"
	"storefront/internal/session"
)

type productService interface {
	List(ctx context.Context, query, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	LineItem(ctx context.Context, id string) (domain.LineItem, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, key string) (*domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type checkoutService interface {
	Summary(items []domain.LineItem, country domain.Country) checkout.Summary
	PlaceOrder(ctx context.Context, sessionID string, cart checkout.CartLedger, form domain.CheckoutFormData) (domain.Order, error)
}

type sessionManager interface {
	NewID() (string, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	End(id string) bool
	Forget(ctx context.Context, id string) error
}

// Deps carries the services the router dispatches to.
type Deps struct {
	ProductSvc  productService
	CategorySvc categoryService
	CheckoutSvc checkoutService
	Sessions    sessionManager

	SessionCookie       string
	SessionCookieSecure bool
	SessionMaxAge       time.Duration
	CORSOrigins         []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, checks Checks, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.CheckoutSvc == nil || deps.Sessions == nil {
		return nil, errors.New("httpserver: missing dependency")
	}
	if deps.SessionCookie == "" {
		deps.SessionCookie = "storefront_session"
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(checks))

	h := &handlers{logger: logger, deps: deps}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.GET("/categories/:key", h.getCategory)

	shop := router.Group("/")
	shop.Use(sessionMiddleware(deps.Sessions, deps.SessionCookie, deps.SessionMaxAge, deps.SessionCookieSecure, logger))
	{
		shop.GET("/cart", h.getCart)
		shop.POST("/cart/items", h.addCartItem)
		shop.PATCH("/cart/items/:id", h.updateCartItem)
		shop.DELETE("/cart/items/:id", h.removeCartItem)
		shop.DELETE("/cart", h.clearCart)
		shop.GET("/cart/summary", h.cartSummary)

		shop.POST("/checkout", h.placeOrder)
		shop.GET("/orders", h.listOrders)
		shop.GET("/orders/:orderId", h.getOrder)

		shop.GET("/wishlist", h.getWishlist)
		shop.POST("/wishlist/items", h.addWishlistItem)
		shop.DELETE("/wishlist/items/:id", h.removeWishlistItem)
		shop.DELETE("/wishlist", h.clearWishlist)

		shop.DELETE("/session", h.endSession)
	}

	admin := router.Group("/admin")
	admin.Use(adminGuard())
	{
		admin.PUT("/products/:id", h.upsertProduct)
		admin.PUT("/categories/:key", h.upsertCategory)
	}

	return router, nil
}

type handlers struct {
	logger *log.Logger
	deps   Deps
}
