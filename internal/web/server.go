// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"policy-guard/internal/core"
	"policy-guard/internal/detector"
	"policy-guard/internal/formatters"
	_ "policy-guard/internal/formatters/json"
	_ "policy-guard/internal/formatters/text"
	_ "policy-guard/internal/formatters/yaml"
	"policy-guard/internal/resilience"
	"policy-guard/internal/version"
)

// DefaultMaxBodyBytes caps the size of a scan request body.
const DefaultMaxBodyBytes = 1 << 20

// Scanner is the part of core.Scanner the server needs.
type Scanner interface {
	Scan(ctx context.Context, text string) core.ScanResult
}

// Options configures a Server.
type Options struct {
	Scanner      Scanner
	Logger       logrus.FieldLogger
	Gatherer     prometheus.Gatherer // served on /metrics when set
	CORSOrigins  []string            // empty allows every origin
	MaxBodyBytes int64
	// Collaborators reports circuit breaker state on /health when set.
	Collaborators func() []resilience.CircuitBreakerStats
}

// Server exposes the scanner over HTTP.
type Server struct {
	scanner  Scanner
	logger   logrus.FieldLogger
	maxBody  int64
	handler  http.Handler
	server   *http.Server
	gatherer prometheus.Gatherer
	breakers func() []resilience.CircuitBreakerStats
}

// ScanRequest is the body of POST /scan and POST /export.
type ScanRequest struct {
	Text *string `json:"text" binding:"required"`
}

// NewServer creates a new web server instance
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		scanner:  opts.Scanner,
		logger:   logger,
		maxBody:  maxBody,
		gatherer: opts.Gatherer,
		breakers: opts.Collaborators,
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	}).Handler(s.routes())
	return s
}

// Handler returns the root HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.handleHealth)
	r.POST("/scan", s.handleScan)
	r.POST("/export", s.handleExport)
	r.GET("/formats", s.handleFormats)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// requestLogger logs method, path, status and latency. Bodies are never
// logged since they carry the text being scanned.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("request handled")
	}
}

// handleHealth reports "degraded" while any collaborator's breaker is open.
// The process itself is still up, so the status code stays 200.
func (s *Server) handleHealth(c *gin.Context) {
	info := version.Full()
	status := "healthy"
	collaborators := []resilience.CircuitBreakerStats{}
	if s.breakers != nil {
		collaborators = s.breakers()
		for _, st := range collaborators {
			if st.State != resilience.StateClosed.String() {
				status = "degraded"
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"collaborators": collaborators,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "policy-guard",
		"version":   info["version"],
		"build_info": gin.H{
			"commit":     info["commit"],
			"build_date": info["buildDate"],
			"go_version": info["goVersion"],
			"platform":   info["platform"],
		},
	})
}

// bindScanRequest reads the request body. It writes a 400 or 413 reply and
// returns false on failure.
func (s *Server) bindScanRequest(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": "request body must be JSON of the form {\"text\": \"...\"}"})
		return "", false
	}
	return *req.Text, true
}

// handleScan runs a scan. ERROR verdicts are still 200 replies; callers read
// the verdict field.
func (s *Server) handleScan(c *gin.Context) {
	text, ok := s.bindScanRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.scan(c.Request.Context(), text))
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if _, exists := formatters.Get(format); !exists {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   fmt.Sprintf("unsupported format %q", format),
			"formats": formatters.List(),
		})
		return
	}

	text, ok := s.bindScanRequest(c)
	if !ok {
		return
	}

	result := s.scan(c.Request.Context(), text)
	content, mimeType, filename, err := formatters.ExportForWeb(format, result, formatters.FormatterOptions{NoColor: true, Verbose: true})
	if err != nil {
		s.logger.WithError(err).WithField("format", format).Error("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, []byte(content))
}

func (s *Server) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, formatters.GetSupportedFormats())
}

func (s *Server) scan(ctx context.Context, text string) core.ScanResult {
	result := s.scanner.Scan(ctx, text)
	if result.Flagged == nil {
		result.Flagged = []detector.EntityGroup{}
	}
	return result
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Scans wait on the classifier and explainer.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("policy-guard API listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
