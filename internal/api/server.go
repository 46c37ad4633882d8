// Package api exposes curation, publication and ingestion over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"juriscope/internal/events"
	"juriscope/internal/ingest"
	"juriscope/internal/integrity"
	"juriscope/internal/lifecycle"
	"juriscope/internal/logging"
	"juriscope/internal/metrics"
	"juriscope/internal/storage"
	"juriscope/internal/workflows"
)

// WorkflowClient is the part of the Temporal client the API uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Deps struct {
	Store     storage.Store
	Lifecycle *lifecycle.Service
	Processor *ingest.Processor
	Verifier  *integrity.Verifier
	Hub       *events.Hub
	Metrics   *metrics.Metrics
	Temporal  WorkflowClient
	TaskQueue string

	// BatchLimit and BatchDelay fill zero values of a batch request.
	BatchLimit int
	BatchDelay int
	Logger     *slog.Logger
}

type Server struct {
	store         storage.Store
	lifecycle     *lifecycle.Service
	processor     *ingest.Processor
	verifier      *integrity.Verifier
	hub           *events.Hub
	metrics       *metrics.Metrics
	temporal      WorkflowClient
	taskQueue     string
	batchDefaults workflows.IngestBatchInput
	logger        *slog.Logger
}

func NewServer(d Deps) *Server {
	return &Server{
		store:         d.Store,
		lifecycle:     d.Lifecycle,
		processor:     d.Processor,
		verifier:      d.Verifier,
		hub:           d.Hub,
		metrics:       d.Metrics,
		temporal:      d.Temporal,
		taskQueue:     d.TaskQueue,
		batchDefaults: workflows.IngestBatchInput{Limit: d.BatchLimit, DelaySeconds: d.BatchDelay},
		logger:        logging.OrDefault(d.Logger),
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), withCORS())

	r.GET("/healthz", s.handleHealthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	if s.hub != nil {
		r.GET("/events", s.handleEvents)
	}

	docs := r.Group("/documents")
	docs.POST("", s.handleIntake)
	docs.GET("/:id", s.handleGetDocument)
	docs.GET("/:id/audit", s.handleDocumentAudit)
	docs.POST("/:id/curate", s.handleCurate)
	docs.POST("/:id/archive", s.handleArchive)
	docs.POST("/:id/analyze", s.handleAnalyze)
	docs.POST("/:id/verify", s.handleVerify)

	articles := r.Group("/articles")
	articles.GET("/:id", s.handleGetArticle)
	articles.POST("/:id/publish", s.handlePublish)
	articles.POST("/:id/place", s.handlePlace)

	r.GET("/portal/general", s.handleGeneral)

	batches := r.Group("/ingest/batches")
	batches.POST("", s.handleStartBatch)
	batches.GET("/:id", s.handleBatchProgress)
	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics" {
			return
		}
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
