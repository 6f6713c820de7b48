// Package web serves the trading dashboard: an HTML form surface plus a
// small JSON API, both thin wrappers over the exchange client.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nakula/pkg/exchange"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server hosts the dashboard and JSON API on one listener.
type Server struct {
	addr    string
	client  exchange.Client
	logger  zerolog.Logger
	router  *gin.Engine
	sandbox bool
}

// Config holds the settings for a Server.
type Config struct {
	Addr    string
	Client  exchange.Client
	Logger  zerolog.Logger
	Sandbox bool
}

// NewServer builds the router and parses the embedded templates.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, errors.New("exchange client is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		addr:    cfg.Addr,
		client:  cfg.Client,
		logger:  cfg.Logger,
		router:  router,
		sandbox: cfg.Sandbox,
	}
	router.Use(s.requestLogger())
	s.registerRoutes()
	return s, nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleDashboard)
	s.router.POST("/orders", s.handlePlaceOrderForm)
	s.router.POST("/orders/cancel", s.handleCancelOrderForm)

	api := s.router.Group("/api")
	api.GET("/balance", s.handleBalance)
	api.GET("/price/:symbol", s.handlePrice)
	api.GET("/orders", s.handleListOrders)
	api.POST("/orders", s.handlePlaceOrder)
	api.DELETE("/orders/:symbol/:id", s.handleCancelOrder)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("web server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
