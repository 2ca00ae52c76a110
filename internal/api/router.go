package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/report"
)

const requestIDHeader = "X-Request-Id"

// NewRouter wires the JSON API over the report service.
func NewRouter(svc *report.Service, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	h := NewHandlers(svc)

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.GET("/projects", h.Projects)
	api.GET("/boards", h.Boards)
	api.GET("/folders", h.Folders)
	api.GET("/task_lists", h.TaskLists)
	api.GET("/sprint-report", h.SprintReport)
	api.GET("/sprint-history", h.SprintHistory)
	api.GET("/risks", h.Risks)

	return r
}

// requestLogger tags every request with an id and logs it once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http")
	}
}
