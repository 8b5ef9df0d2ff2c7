package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports service liveness and database connectivity.
func (s *Server) Health(c *gin.Context) {
	status := "healthy"
	database := "ok"
	httpStatus := http.StatusOK

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err != nil {
			status = "unhealthy"
			database = "unavailable"
			httpStatus = http.StatusServiceUnavailable
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			status = "unhealthy"
			database = "unavailable"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	uptime := "unknown"
	if startTime, exists := c.Get("serverStartTime"); exists {
		if start, ok := startTime.(time.Time); ok {
			uptime = time.Since(start).Round(time.Second).String()
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    uptime,
	})
}
