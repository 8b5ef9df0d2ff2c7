// Package config provides environment based configuration management.
package config

import (
	"fmt"
	"strings"

	"agent-relay/internal/types"
	"agent-relay/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Constants holds configuration validation boundaries.
type Constants struct {
	MinPort    int
	MaxPort    int
	MinTimeout int
}

// DefaultConstants defines the validation boundaries.
var DefaultConstants = Constants{
	MinPort:    1,
	MaxPort:    65535,
	MinTimeout: 1,
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Server      types.ServerConfig
	Auth        types.AuthConfig
	CORS        types.CORSConfig
	Performance types.PerformanceConfig
	Log         types.LogConfig
	Database    types.DatabaseConfig
	Upstream    types.UpstreamConfig
	Chat        types.ChatConfig
	RedisDSN    string
	DebugMode   bool
}

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager, loading .env if present.
func NewManager() (*Manager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	m := &Manager{}
	if err := m.ReloadConfig(); err != nil {
		return nil, err
	}

	return m, nil
}

// ReloadConfig re-reads configuration from the environment and validates it.
func (m *Manager) ReloadConfig() error {
	config := &Config{
		Server: types.ServerConfig{
			Port:                    utils.ParseInteger(utils.GetEnvOrDefault("PORT", "3001"), 3001),
			Host:                    utils.GetEnvOrDefault("HOST", "0.0.0.0"),
			ReadTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_READ_TIMEOUT", "60"), 60),
			WriteTimeout:            utils.ParseInteger(utils.GetEnvOrDefault("SERVER_WRITE_TIMEOUT", "600"), 600),
			IdleTimeout:             utils.ParseInteger(utils.GetEnvOrDefault("SERVER_IDLE_TIMEOUT", "120"), 120),
			GracefulShutdownTimeout: utils.ParseInteger(utils.GetEnvOrDefault("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", "10"), 10),
		},
		Auth: types.AuthConfig{
			Key: utils.GetEnvOrDefault("AUTH_KEY", ""),
		},
		CORS: types.CORSConfig{
			Enabled:          utils.ParseBoolean(utils.GetEnvOrDefault("ENABLE_CORS", "false"), false),
			AllowedOrigins:   utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_ORIGINS", ""), nil),
			AllowedMethods:   utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   utils.ParseArray(utils.GetEnvOrDefault("ALLOWED_HEADERS", "*"), []string{"*"}),
			AllowCredentials: utils.ParseBoolean(utils.GetEnvOrDefault("ALLOW_CREDENTIALS", "false"), false),
		},
		Performance: types.PerformanceConfig{
			MaxConcurrentRequests: utils.ParseInteger(utils.GetEnvOrDefault("MAX_CONCURRENT_REQUESTS", "100"), 100),
		},
		Log: types.LogConfig{
			Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
			Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean(utils.GetEnvOrDefault("LOG_ENABLE_FILE", "false"), false),
			FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
		},
		Database: types.DatabaseConfig{
			DSN: utils.GetEnvOrDefault("DATABASE_DSN", "./data/agent-relay.db"),
		},
		Upstream: types.UpstreamConfig{
			Host:           strings.TrimSuffix(utils.GetEnvOrDefault("UPSTREAM_HOST", ""), "/"),
			Token:          utils.GetEnvOrDefault("UPSTREAM_TOKEN", ""),
			StreamTimeout:  utils.ParseInteger(utils.GetEnvOrDefault("STREAM_TIMEOUT", "300"), 300),
			ConnectTimeout: utils.ParseInteger(utils.GetEnvOrDefault("CONNECT_TIMEOUT", "15"), 15),
		},
		Chat: types.ChatConfig{
			MaxChats:                utils.ParseInteger(utils.GetEnvOrDefault("MAX_CHATS", "10"), 10),
			LogWriteIntervalSeconds: utils.ParseInteger(utils.GetEnvOrDefault("LOG_WRITE_INTERVAL", "30"), 30),
		},
		RedisDSN:  utils.GetEnvOrDefault("REDIS_DSN", ""),
		DebugMode: utils.ParseBoolean(utils.GetEnvOrDefault("DEBUG_MODE", "false"), false),
	}

	// Graceful shutdown needs enough time to drain active streams
	if config.Server.GracefulShutdownTimeout < 10 {
		config.Server.GracefulShutdownTimeout = 10
	}

	m.config = config
	return m.Validate()
}

// Validate checks configuration for errors. All problems are reported together.
func (m *Manager) Validate() error {
	var validationErrors []string

	if m.config.Server.Port < DefaultConstants.MinPort || m.config.Server.Port > DefaultConstants.MaxPort {
		validationErrors = append(validationErrors, fmt.Sprintf("port must be between %d and %d", DefaultConstants.MinPort, DefaultConstants.MaxPort))
	}

	if m.config.Auth.Key == "" {
		validationErrors = append(validationErrors, "AUTH_KEY is required")
	}

	if m.config.Performance.MaxConcurrentRequests < 1 {
		validationErrors = append(validationErrors, "max concurrent requests cannot be less than 1")
	}

	if m.config.Upstream.StreamTimeout < DefaultConstants.MinTimeout {
		validationErrors = append(validationErrors, "stream timeout cannot be less than 1 second")
	}

	if m.config.Chat.MaxChats < 1 {
		validationErrors = append(validationErrors, "max chats cannot be less than 1")
	}

	if m.config.CORS.Enabled {
		if len(m.config.CORS.AllowedOrigins) == 0 {
			validationErrors = append(validationErrors, "ALLOWED_ORIGINS is required when CORS is enabled")
		} else {
			for _, origin := range m.config.CORS.AllowedOrigins {
				if origin == "*" {
					logrus.Warn("CORS allows all origins, this is not recommended for production")
				}
			}
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// GetAuthConfig returns authentication configuration
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.config.Auth
}

// GetCORSConfig returns CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.config.CORS
}

// GetPerformanceConfig returns performance configuration
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig {
	return m.config.Performance
}

// GetLogConfig returns logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.config.Log
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.config.Database
}

// GetUpstreamConfig returns serving-platform configuration
func (m *Manager) GetUpstreamConfig() types.UpstreamConfig {
	return m.config.Upstream
}

// GetChatConfig returns chat storage configuration
func (m *Manager) GetChatConfig() types.ChatConfig {
	return m.config.Chat
}

// GetEffectiveServerConfig returns server configuration
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.config.Server
}

// GetRedisDSN returns the Redis connection string, empty when using memory store
func (m *Manager) GetRedisDSN() string {
	return m.config.RedisDSN
}

// IsDebugMode returns whether debug mode is enabled
func (m *Manager) IsDebugMode() bool {
	return m.config.DebugMode
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	serverConfig := m.GetEffectiveServerConfig()

	storeType := "memory"
	if m.config.RedisDSN != "" {
		storeType = "redis"
	}

	upstreamToken := "not set"
	if m.config.Upstream.Token != "" {
		upstreamToken = utils.MaskToken(m.config.Upstream.Token)
	}

	logrus.Info("Server configuration:")
	logrus.Infof("  Listen: %s:%d", serverConfig.Host, serverConfig.Port)
	logrus.Infof("  Read/Write/Idle timeouts: %ds/%ds/%ds", serverConfig.ReadTimeout, serverConfig.WriteTimeout, serverConfig.IdleTimeout)
	logrus.Infof("  Graceful shutdown timeout: %ds", serverConfig.GracefulShutdownTimeout)
	logrus.Infof("  Max concurrent requests: %d", m.config.Performance.MaxConcurrentRequests)
	logrus.Infof("  Database: %s", m.config.Database.DSN)
	logrus.Infof("  Store: %s", storeType)
	logrus.Infof("  Upstream host: %s", m.config.Upstream.Host)
	logrus.Infof("  Upstream token: %s", upstreamToken)
	logrus.Infof("  Stream timeout: %ds", m.config.Upstream.StreamTimeout)
	logrus.Infof("  Max chats: %d", m.config.Chat.MaxChats)
	logrus.Infof("  CORS enabled: %t", m.config.CORS.Enabled)
	logrus.Infof("  Debug mode: %t", m.config.DebugMode)
}
