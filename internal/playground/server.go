package playground

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"kitchenbot/internal/database"
	"kitchenbot/internal/evaluation"
	"kitchenbot/internal/monitoring"
	"kitchenbot/internal/recipes"
)

// Options wires the server to the rest of the application. Store and
// Session are optional.
type Options struct {
	Context   context.Context
	Evaluator *evaluation.Evaluator
	Catalog   *recipes.Catalog
	Monitor   *monitoring.Monitor
	Store     *database.Store
	Session   *Session
	JWTSecret string
}

// PlaygroundServer serves the recipe catalog, evaluation runs and the live
// kitchen stream
type PlaygroundServer struct {
	router    *gin.Engine
	ctx       context.Context
	evaluator *evaluation.Evaluator
	catalog   *recipes.Catalog
	monitor   *monitoring.Monitor
	store     *database.Store
	session   *Session
	secret    string

	running sync.WaitGroup
}

// NewPlaygroundServer creates a new playground server instance
func NewPlaygroundServer(opts Options) *PlaygroundServer {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Catalog == nil {
		opts.Catalog = recipes.Default()
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NewMonitor()
	}

	server := &PlaygroundServer{
		router:    gin.New(),
		ctx:       opts.Context,
		evaluator: opts.Evaluator,
		catalog:   opts.Catalog,
		monitor:   opts.Monitor,
		store:     opts.Store,
		session:   opts.Session,
		secret:    opts.JWTSecret,
	}
	server.router.Use(gin.Logger(), gin.Recovery())

	server.setupRoutes()
	return server
}

// setupRoutes configures the API routes
func (s *PlaygroundServer) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/recipes", s.handleListRecipes)
		api.GET("/scenarios", s.handleListScenarios)
		api.GET("/metrics", s.handleMetrics)
		api.GET("/state", s.handleState)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.POST("/evaluate", AuthMiddleware(s.secret), s.handleEvaluate)
	}
}

// Router returns the Gin router
func (s *PlaygroundServer) Router() *gin.Engine {
	return s.router
}

// Wait blocks until background evaluations have finished
func (s *PlaygroundServer) Wait() {
	s.running.Wait()
}
