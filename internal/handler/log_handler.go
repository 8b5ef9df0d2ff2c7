package handler

import (
	"strconv"

	"agent-relay/internal/models"
	"agent-relay/internal/response"

	"github.com/gin-gonic/gin"
)

// GetLogs returns invocation logs, newest first, filtered by the optional
// agent_name, chat_id, trace_id and is_success query parameters.
func (s *Server) GetLogs(c *gin.Context) {
	query := s.DB.Model(&models.InvocationLog{})

	if agentName := c.Query("agent_name"); agentName != "" {
		query = query.Where("agent_name = ?", agentName)
	}
	if chatID := c.Query("chat_id"); chatID != "" {
		query = query.Where("chat_id = ?", chatID)
	}
	if traceID := c.Query("trace_id"); traceID != "" {
		query = query.Where("trace_id = ?", traceID)
	}
	if isSuccess := c.Query("is_success"); isSuccess != "" {
		if success, err := strconv.ParseBool(isSuccess); err == nil {
			query = query.Where("is_success = ?", success)
		}
	}

	var logs []models.InvocationLog
	result, err := response.Paginate(c, query.Order("timestamp desc"), &logs)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, result)
}
