// Package container wires application dependencies together.
package container

import (
	"agent-relay/internal/agents"
	"agent-relay/internal/app"
	"agent-relay/internal/config"
	"agent-relay/internal/db"
	"agent-relay/internal/handler"
	"agent-relay/internal/httpclient"
	"agent-relay/internal/relay"
	"agent-relay/internal/router"
	"agent-relay/internal/services"
	"agent-relay/internal/store"
	"agent-relay/internal/types"

	"go.uber.org/dig"
)

// BuildContainer registers all providers. The embed.FS and index page for
// the frontend are provided separately by main, where //go:embed lives.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		newConfigManager,
		store.NewStore,
		db.NewDB,
		httpclient.NewManager,
		agents.NewRegistry,
		services.NewAgentService,
		services.NewChatService,
		services.NewInvocationLogService,
		relay.NewRelayServer,
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// newConfigManager adapts the concrete config manager to the interface the
// rest of the application depends on.
func newConfigManager() (types.ConfigManager, error) {
	return config.NewManager()
}
