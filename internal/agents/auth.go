package agents

import (
	"fmt"
	"net/http"
	"strings"

	"agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/types"
)

// ForwardedAccessTokenHeader carries the caller's upstream credential for
// passthrough agents. It is separate from the gateway's own auth header so
// the two credentials never collide.
const ForwardedAccessTokenHeader = "X-Forwarded-Access-Token"

// ResolveUpstreamToken returns the bearer credential to present upstream for
// one invocation, according to the agent's auth mode.
func ResolveUpstreamToken(r *http.Request, agent *models.Agent, upstream types.UpstreamConfig) (string, *errors.APIError) {
	switch agent.AuthMode {
	case models.AuthModeEnvToken:
		if upstream.Token == "" {
			return "", errors.NewAPIError(errors.ErrInternalServer, "upstream token is not configured")
		}
		return upstream.Token, nil

	case models.AuthModePassthrough:
		// The Authorization header holds the gateway's own credential, so
		// the upstream token must arrive on its dedicated header.
		token := strings.TrimSpace(r.Header.Get(ForwardedAccessTokenHeader))
		if token == "" {
			return "", errors.NewValidationError("passthrough agents require a caller access token")
		}
		return token, nil

	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown auth mode: %s", agent.AuthMode))
	}
}
