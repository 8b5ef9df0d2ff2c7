package agents

import (
	"net/http"

	"agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/types"

	"gorm.io/gorm"
)

// Invocation is a fully resolved upstream call target: everything the relay
// needs to issue the request.
type Invocation struct {
	Agent      *models.Agent
	Deployment Deployment
	URL        string
	Token      string
}

// Registry resolves agent ids to invocable upstream targets.
type Registry struct {
	db            *gorm.DB
	configManager types.ConfigManager
}

// NewRegistry creates an agent registry backed by the given database.
func NewRegistry(db *gorm.DB, configManager types.ConfigManager) *Registry {
	return &Registry{db: db, configManager: configManager}
}

// GetByID loads one agent by id.
func (r *Registry) GetByID(id uint) (*models.Agent, *errors.APIError) {
	var agent models.Agent
	if err := r.db.First(&agent, id).Error; err != nil {
		return nil, errors.ParseDBError(err)
	}
	return &agent, nil
}

// Resolve loads an agent and builds the invocation target for one request.
// Disabled agents are rejected before any upstream work happens.
func (r *Registry) Resolve(req *http.Request, agentID uint) (*Invocation, *errors.APIError) {
	agent, apiErr := r.GetByID(agentID)
	if apiErr != nil {
		return nil, apiErr
	}
	if !agent.Enabled {
		return nil, errors.ErrAgentDisabled
	}

	deployment, apiErr := ForDeploymentType(agent.DeploymentType)
	if apiErr != nil {
		return nil, apiErr
	}

	upstream := r.configManager.GetUpstreamConfig()
	token, apiErr := ResolveUpstreamToken(req, agent, upstream)
	if apiErr != nil {
		return nil, apiErr
	}

	return &Invocation{
		Agent:      agent,
		Deployment: deployment,
		URL:        deployment.InvocationURL(upstream.Host, agent.EndpointName),
		Token:      token,
	}, nil
}
