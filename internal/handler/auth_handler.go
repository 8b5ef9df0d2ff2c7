package handler

import (
	"crypto/subtle"
	"net/http"

	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest defines the payload for authenticating against the
// management API.
type LoginRequest struct {
	AuthKey string `json:"auth_key"`
}

// Login validates the management key. The comparison is constant time so
// the key cannot be probed byte by byte.
func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorI18n(c, http.StatusBadRequest, app_errors.ErrInvalidJSON.Code, "auth.invalid_request")
		return
	}

	authKey := s.config.GetAuthConfig().Key
	if req.AuthKey == "" {
		response.ErrorI18n(c, http.StatusUnauthorized, app_errors.ErrUnauthorized.Code, "auth.key_required")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AuthKey), []byte(authKey)) != 1 {
		response.ErrorI18n(c, http.StatusUnauthorized, app_errors.ErrUnauthorized.Code, "auth.invalid_key")
		return
	}

	response.SuccessI18n(c, "auth.authentication_successful", gin.H{"success": true})
}
