// Package handler provides HTTP handlers for the application
package handler

import (
	"agent-relay/internal/agents"
	"agent-relay/internal/services"
	"agent-relay/internal/types"

	"go.uber.org/dig"
	"gorm.io/gorm"
)

// Server holds the dependencies shared by the management API handlers.
type Server struct {
	DB         *gorm.DB
	config     types.ConfigManager
	Registry   *agents.Registry
	AgentSvc   *services.AgentService
	ChatSvc    *services.ChatService
	LogService *services.InvocationLogService
}

// ServerParams contains the dependencies injected into the handler server.
type ServerParams struct {
	dig.In

	DB         *gorm.DB
	Config     types.ConfigManager
	Registry   *agents.Registry
	AgentSvc   *services.AgentService
	ChatSvc    *services.ChatService
	LogService *services.InvocationLogService
}

// NewServer creates the handler server.
func NewServer(params ServerParams) *Server {
	return &Server{
		DB:         params.DB,
		config:     params.Config,
		Registry:   params.Registry,
		AgentSvc:   params.AgentSvc,
		ChatSvc:    params.ChatSvc,
		LogService: params.LogService,
	}
}
