package handler

import (
	"strconv"

	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/response"
	"agent-relay/internal/services"

	"github.com/gin-gonic/gin"
)

// AgentCreateRequest defines the payload for creating an agent.
type AgentCreateRequest struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	Description    string `json:"description"`
	DeploymentType string `json:"deployment_type"`
	AuthMode       string `json:"auth_mode"`
	EndpointName   string `json:"endpoint_name"`
	Enabled        *bool  `json:"enabled"`
	Sort           int    `json:"sort"`
}

// AgentUpdateRequest defines the payload for updating an agent.
// Using pointer fields avoids zero values clobbering existing columns.
type AgentUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	DisplayName    *string `json:"display_name,omitempty"`
	Description    *string `json:"description,omitempty"`
	DeploymentType *string `json:"deployment_type,omitempty"`
	AuthMode       *string `json:"auth_mode,omitempty"`
	EndpointName   *string `json:"endpoint_name,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
	Sort           *int    `json:"sort,omitempty"`
}

// ListAgents handles listing all agents.
func (s *Server) ListAgents(c *gin.Context) {
	agentList, err := s.AgentSvc.ListAgents()
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, agentList)
}

// CreateAgent handles the creation of a new agent.
func (s *Server) CreateAgent(c *gin.Context) {
	var req AgentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	agent, err := s.AgentSvc.CreateAgent(services.AgentCreateParams{
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Description:    req.Description,
		DeploymentType: req.DeploymentType,
		AuthMode:       req.AuthMode,
		EndpointName:   req.EndpointName,
		Enabled:        req.Enabled,
		Sort:           req.Sort,
	})
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, agent)
}

// UpdateAgent handles updating an existing agent.
func (s *Server) UpdateAgent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, app_errors.ErrBadRequest)
		return
	}

	var req AgentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	agent, svcErr := s.AgentSvc.UpdateAgent(uint(id), services.AgentUpdateParams{
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Description:    req.Description,
		DeploymentType: req.DeploymentType,
		AuthMode:       req.AuthMode,
		EndpointName:   req.EndpointName,
		Enabled:        req.Enabled,
		Sort:           req.Sort,
	})
	if HandleServiceError(c, svcErr) {
		return
	}
	response.Success(c, agent)
}

// DeleteAgent handles removing an agent.
func (s *Server) DeleteAgent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, app_errors.ErrBadRequest)
		return
	}

	if HandleServiceError(c, s.AgentSvc.DeleteAgent(uint(id))) {
		return
	}
	response.SuccessI18n(c, "agent.deleted", gin.H{"id": id})
}
