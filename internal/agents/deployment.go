// Package agents resolves agent records to invocable upstream targets. The
// deployment-type and auth-mode sets are closed, so dispatch is a switch
// rather than a mutable registry.
package agents

import (
	"fmt"

	"agent-relay/internal/errors"
	"agent-relay/internal/models"
)

// Deployment describes the invocation behavior of one deployment type.
type Deployment interface {
	// Type returns the deployment type string stored on the agent record.
	Type() string

	// InvocationURL builds the upstream invocation endpoint for an agent.
	InvocationURL(host, endpointName string) string

	// EmitsTraceSummary reports whether the relay tracks tool-call output
	// items while forwarding and synthesizes a trace.summary frame before
	// the stream terminator.
	EmitsTraceSummary() bool
}

type servingEndpoint struct{}

func (servingEndpoint) Type() string { return models.DeploymentTypeServingEndpoint }

func (servingEndpoint) InvocationURL(host, endpointName string) string {
	return fmt.Sprintf("%s/serving-endpoints/%s/invocations", host, endpointName)
}

func (servingEndpoint) EmitsTraceSummary() bool { return false }

type agentBricksMAS struct{}

func (agentBricksMAS) Type() string { return models.DeploymentTypeAgentBricksMAS }

func (agentBricksMAS) InvocationURL(host, endpointName string) string {
	return fmt.Sprintf("%s/serving-endpoints/%s/invocations", host, endpointName)
}

func (agentBricksMAS) EmitsTraceSummary() bool { return true }

// ForDeploymentType maps a deployment type string to its behavior.
func ForDeploymentType(deploymentType string) (Deployment, *errors.APIError) {
	switch deploymentType {
	case models.DeploymentTypeServingEndpoint:
		return servingEndpoint{}, nil
	case models.DeploymentTypeAgentBricksMAS:
		return agentBricksMAS{}, nil
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown deployment type: %s", deploymentType))
	}
}
