package services

import (
	"regexp"
	"strings"

	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/types"

	"gorm.io/gorm"
)

var agentNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,100}$`)

// AgentCreateParams defines the parameters for creating an agent.
type AgentCreateParams struct {
	Name           string
	DisplayName    string
	Description    string
	DeploymentType string
	AuthMode       string
	EndpointName   string
	Enabled        *bool
	Sort           int
}

// AgentUpdateParams defines the parameters for updating an agent. Pointer
// fields distinguish "not provided" from zero values.
type AgentUpdateParams struct {
	Name           *string
	DisplayName    *string
	Description    *string
	DeploymentType *string
	AuthMode       *string
	EndpointName   *string
	Enabled        *bool
	Sort           *int
}

// AgentService manages the agent catalog.
type AgentService struct {
	db            *gorm.DB
	configManager types.ConfigManager
}

// NewAgentService creates a new AgentService.
func NewAgentService(db *gorm.DB, configManager types.ConfigManager) *AgentService {
	return &AgentService{
		db:            db,
		configManager: configManager,
	}
}

// ListAgents returns all agents ordered by sort weight, then name.
func (s *AgentService) ListAgents() ([]models.Agent, error) {
	var agentList []models.Agent
	if err := s.db.Order("sort desc, name asc").Find(&agentList).Error; err != nil {
		return nil, err
	}
	return agentList, nil
}

// GetAgent returns a single agent by id.
func (s *AgentService) GetAgent(id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.First(&agent, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewI18nError(app_errors.ErrResourceNotFound, "agent.not_found", nil)
		}
		return nil, err
	}
	return &agent, nil
}

// CreateAgent validates the parameters and creates a new agent.
func (s *AgentService) CreateAgent(params AgentCreateParams) (*models.Agent, error) {
	if err := validateAgentName(params.Name); err != nil {
		return nil, err
	}
	if err := validateDeploymentType(params.DeploymentType); err != nil {
		return nil, err
	}
	if err := validateAuthMode(params.AuthMode); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.EndpointName) == "" {
		return nil, NewI18nError(app_errors.ErrValidation, "validation.endpoint_name_required", nil)
	}

	enabled := true
	if params.Enabled != nil {
		enabled = *params.Enabled
	}

	agent := &models.Agent{
		Name:           params.Name,
		DisplayName:    params.DisplayName,
		Description:    params.Description,
		DeploymentType: params.DeploymentType,
		AuthMode:       params.AuthMode,
		EndpointName:   strings.TrimSpace(params.EndpointName),
		Enabled:        enabled,
		Sort:           params.Sort,
	}
	if err := s.db.Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// UpdateAgent applies the provided fields to an existing agent.
func (s *AgentService) UpdateAgent(id uint, params AgentUpdateParams) (*models.Agent, error) {
	agent, err := s.GetAgent(id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if err := validateAgentName(*params.Name); err != nil {
			return nil, err
		}
		agent.Name = *params.Name
	}
	if params.DeploymentType != nil {
		if err := validateDeploymentType(*params.DeploymentType); err != nil {
			return nil, err
		}
		agent.DeploymentType = *params.DeploymentType
	}
	if params.AuthMode != nil {
		if err := validateAuthMode(*params.AuthMode); err != nil {
			return nil, err
		}
		agent.AuthMode = *params.AuthMode
	}
	if params.EndpointName != nil {
		if strings.TrimSpace(*params.EndpointName) == "" {
			return nil, NewI18nError(app_errors.ErrValidation, "validation.endpoint_name_required", nil)
		}
		agent.EndpointName = strings.TrimSpace(*params.EndpointName)
	}
	if params.DisplayName != nil {
		agent.DisplayName = *params.DisplayName
	}
	if params.Description != nil {
		agent.Description = *params.Description
	}
	if params.Enabled != nil {
		agent.Enabled = *params.Enabled
	}
	if params.Sort != nil {
		agent.Sort = *params.Sort
	}

	if err := s.db.Save(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// DeleteAgent removes an agent. Chats referencing the agent keep their
// history; only new invocations become impossible.
func (s *AgentService) DeleteAgent(id uint) error {
	result := s.db.Delete(&models.Agent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewI18nError(app_errors.ErrResourceNotFound, "agent.not_found", nil)
	}
	return nil
}

func validateAgentName(name string) error {
	if !agentNamePattern.MatchString(name) {
		return NewI18nError(app_errors.ErrValidation, "validation.invalid_agent_name", nil)
	}
	return nil
}

func validateDeploymentType(deploymentType string) error {
	if !models.IsValidDeploymentType(deploymentType) {
		return NewI18nError(app_errors.ErrValidation, "validation.invalid_deployment_type", map[string]any{
			"types": models.DeploymentTypeServingEndpoint + ", " + models.DeploymentTypeAgentBricksMAS,
		})
	}
	return nil
}

func validateAuthMode(authMode string) error {
	if !models.IsValidAuthMode(authMode) {
		return NewI18nError(app_errors.ErrValidation, "validation.invalid_auth_mode", map[string]any{
			"modes": models.AuthModeEnvToken + ", " + models.AuthModePassthrough,
		})
	}
	return nil
}
