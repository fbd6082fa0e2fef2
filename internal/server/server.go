package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"job-board-go/internal/apply"
	"job-board-go/internal/auth"
	"job-board-go/internal/config"
	"job-board-go/internal/filter"
	"job-board-go/internal/loader"
	"job-board-go/internal/surface"
)

// MetricsProvider reports ingestion metrics for the health endpoint.
type MetricsProvider interface {
	GetMetrics() loader.LoadMetrics
}

// Deps are the components the handlers drive. Metrics, Apply and Auth
// may be nil; their routes then answer 503.
type Deps struct {
	Engine    *filter.Engine
	Dashboard *surface.Dashboard
	Metrics   MetricsProvider
	Apply     *apply.Client
	Auth      *auth.Client
}

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	config     config.ServerConfig
	deps       Deps
	logger     *log.Logger
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *log.Logger) *Server {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}

	router.Use(gin.Recovery(), requestID(), requestLogger(logger), cors.New(corsConfig))

	s := &Server{
		router: router,
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	s.setUpRoutes()
	return s
}

func (s *Server) setUpRoutes() {
	api := s.router.Group("/api/v1")

	api.GET("/health", s.health)

	api.GET("/jobs", s.listJobs)
	api.GET("/jobs/:id", s.getJob)
	api.POST("/jobs/refetch", s.refetch)
	api.POST("/jobs/:id/apply", s.applyToJob)

	api.POST("/filters", s.applyFilters)
	api.DELETE("/filters", s.clearFilters)
	api.DELETE("/filters/:dimension", s.clearFilter)

	api.POST("/search", s.editSearch)
	api.POST("/search/submit", s.submitSearch)
	api.DELETE("/search", s.clearSearch)

	api.GET("/sidebar", s.getSidebar)
	api.POST("/sidebar/toggle", s.toggleSidebar)
	api.DELETE("/sidebar/:dimension", s.clearSidebarSection)
	api.DELETE("/sidebar", s.resetSidebar)

	api.DELETE("/dashboard", s.clearDashboard)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/register", s.register)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/status", s.authStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Printf("Server listening on :%d", s.config.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	s.logger.Println("Server shutdown completed")
	return nil
}
