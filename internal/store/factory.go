package store

import (
	"agent-relay/internal/types"

	"github.com/sirupsen/logrus"
)

// NewStore creates a Store based on configuration. Redis is used when a DSN
// is configured, otherwise an in-memory store. Single-instance deployments
// work fine with the memory store; the Redis store is needed when multiple
// relay instances must share the active-stream locks.
func NewStore(configManager types.ConfigManager) (Store, error) {
	redisDSN := configManager.GetRedisDSN()

	if redisDSN != "" {
		logrus.Info("Using Redis store")
		return NewRedisStore(redisDSN)
	}

	logrus.Info("Using in-memory store")
	return NewMemoryStore(), nil
}
