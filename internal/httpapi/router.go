// Package httpapi exposes the Task Dispatcher over HTTP for the
// supplemented "serve" mode (spec.md names the core as an embeddable
// library; this is the thin network surface a long-running kadai
// process needs to accept requests from other processes on the same
// machine). Grounded on the teacher's internal/http/router package:
// same route-group-per-concern shape, reduced to the one resource this
// core actually exposes.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/kadai-ai/kadai/internal/dispatcher"
)

// Config mirrors the teacher's router.RouterConfig shape, trimmed to
// what a single-tenant local server needs.
type Config struct {
	IsProduction bool
	ServiceName  string
}

// SetupRoutes wires the dispatcher behind /health and /api/v1/dispatch.
func SetupRoutes(router *gin.Engine, d *dispatcher.Dispatcher, cfg Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := NewDispatchHandler(d)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/dispatch", h.Dispatch)
		v1.GET("/evals", h.Evals)
	}
}
