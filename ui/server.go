// Package ui exposes the scoring pipeline over HTTP. The two scoring
// endpoints keep the exact request and response shapes the dashboard
// frontend expects; the review routes back the operator console.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neeledger/app"
	"neeledger/ports"
)

// Server represents the web server for the NeeLedger API
type Server struct {
	router    *gin.Engine
	predictor ports.Predictor
	pipeline  *app.PipelineService
	reviews   *app.ReviewService
}

// NewServer creates a new web server instance
func NewServer(predictor ports.Predictor, pipeline *app.PipelineService, reviews *app.ReviewService) *Server {
	s := &Server{
		router:    gin.Default(),
		predictor: predictor,
		pipeline:  pipeline,
		reviews:   reviews,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(corsMiddleware())

	// The frontend probes endpoints with the wrong verb during development;
	// answer with a JSON 405 rather than gin's default 404.
	s.router.HandleMethodNotAllowed = true
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
}

// corsMiddleware allows any origin to call the scoring endpoints. The
// dashboard is served from a separate dev origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHealth)

	// Scoring endpoints consumed by the dashboard
	s.router.POST("/api/predict-biomass", s.handlePredictBiomass)
	s.router.POST("/api/xai", s.handleXAI)
	s.router.POST("/api/verify", s.handleVerify)

	// Review console
	s.router.GET("/api/reviews", s.handleListReviews)
	s.router.GET("/api/reviews/summary", s.handleReviewSummary)
	s.router.GET("/api/reviews/export", s.handleExportReviews)
	s.router.GET("/api/reviews/:id", s.handleGetReview)
	s.router.POST("/api/reviews/:id/approve", s.handleApproveReview)
	s.router.POST("/api/reviews/:id/reject", s.handleRejectReview)
}

// Start begins serving on the given address
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the underlying router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
