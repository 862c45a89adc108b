// Package server exposes the generation service over HTTP. Handlers are
// thin: decode the request, run a generation session, map the result to the
// wire shape, and optionally persist through the key-value store.
package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tailored-agentic-units/forge/builder"
	"github.com/tailored-agentic-units/forge/store"
)

// Runner executes generation sessions. Implemented by *builder.Builder.
type Runner interface {
	Create(ctx context.Context, prompt string) (*builder.Result, error)
	Edit(ctx context.Context, prompt string, files map[string]string) (*builder.Result, error)
}

// AppStore persists generated apps. Implemented by *store.AppStore.
type AppStore interface {
	SaveApp(ctx context.Context, projectID string, files, compiled map[string]string, summary string) error
	LoadApp(ctx context.Context, projectID string) (map[string]string, *store.AppMetadata, error)
}

// Server holds handler dependencies.
type Server struct {
	runner Runner
	apps   AppStore
}

// Option configures a Server.
type Option func(*Server)

// WithAppStore enables persistence of generated apps.
func WithAppStore(apps AppStore) Option {
	return func(s *Server) { s.apps = apps }
}

// New creates a Server around a session runner.
func New(runner Runner, opts ...Option) *Server {
	s := &Server{runner: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRoutes registers all service routes on the given engine.
func (s *Server) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.POST("/apps", s.HandleCreate)
	router.POST("/apps/edit", s.HandleEdit)
	router.GET("/apps/:id", s.HandleGetApp)
	router.POST("/apps/:id/edit", s.HandleEditStored)
}

// Router builds a gin engine with the default middleware and all routes
// registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	s.SetupRoutes(router)
	return router
}
