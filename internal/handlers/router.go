// Package handlers is the HTTP surface of the catalog: gin routes, request
// binding, auth middleware and JSON representations.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"totestore/internal/auth"
	"totestore/internal/catalog"
)

const sessionName = "catalog_session"

type RouterConfig struct {
	Catalog       *catalog.Service
	Auth          *auth.Service
	Log           zerolog.Logger
	SessionSecret string
	MaxImageBytes int64
	// MediaURL and MediaRoot, when both set, serve stored files from disk.
	MediaURL  string
	MediaRoot string
	// Ping checks the database for /health.
	Ping func(ctx context.Context) error
	// AllowedOrigins are the browser origins allowed to call the API.
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	RegisterValidators()

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), RequestLogger(cfg.Log), corsMiddleware(cfg.AllowedOrigins))
	if cfg.MaxImageBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxImageBytes
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	if cfg.MediaURL != "" && cfg.MediaRoot != "" {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	r.GET("/health", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	products := NewProductHandler(cfg.Catalog, cfg.Log, cfg.MaxImageBytes)
	users := NewAuthHandler(cfg.Auth, cfg.Log)
	staff := mustStaff(cfg.Auth, cfg.Log)

	r.GET("/products/:id", products.GetProductPage)

	api := r.Group("/api")
	{
		api.POST("/auth/login", users.Login)
		api.POST("/auth/logout", users.Logout)

		api.GET("/products", products.GetProducts)
		api.GET("/products/:id", products.GetProductByID)
		api.POST("/products", staff, products.CreateProduct)
		api.PUT("/products/:id", staff, products.UpdateProduct)
		api.PATCH("/products/:id", staff, products.UpdateProduct)
		api.DELETE("/products/:id", staff, products.DeleteProduct)
		api.PUT("/products/:id/images/order", staff, products.ReorderImages)
		api.PATCH("/products/:id/images/:image_id", staff, products.UpdateImage)
	}

	return trimTrailingSlash(r)
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
