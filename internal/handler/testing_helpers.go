package handler

import (
	"testing"

	"agent-relay/internal/agents"
	"agent-relay/internal/i18n"
	"agent-relay/internal/models"
	"agent-relay/internal/services"
	"agent-relay/internal/store"
	"agent-relay/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Init(); err != nil {
		panic(err)
	}
}

type mockConfigManager struct {
	authKey string
}

func (m *mockConfigManager) GetAuthConfig() types.AuthConfig {
	return types.AuthConfig{Key: m.authKey}
}

func (m *mockConfigManager) GetUpstreamConfig() types.UpstreamConfig {
	return types.UpstreamConfig{Host: "https://workspace.example.com", Token: "dapi-test"}
}

func (m *mockConfigManager) GetChatConfig() types.ChatConfig {
	return types.ChatConfig{MaxChats: 50, LogWriteIntervalSeconds: 1}
}

func (m *mockConfigManager) GetCORSConfig() types.CORSConfig { return types.CORSConfig{} }
func (m *mockConfigManager) GetPerformanceConfig() types.PerformanceConfig {
	return types.PerformanceConfig{}
}
func (m *mockConfigManager) GetLogConfig() types.LogConfig           { return types.LogConfig{} }
func (m *mockConfigManager) GetDatabaseConfig() types.DatabaseConfig { return types.DatabaseConfig{} }
func (m *mockConfigManager) GetEffectiveServerConfig() types.ServerConfig {
	return types.ServerConfig{}
}
func (m *mockConfigManager) GetRedisDSN() string  { return "" }
func (m *mockConfigManager) IsDebugMode() bool    { return false }
func (m *mockConfigManager) Validate() error      { return nil }
func (m *mockConfigManager) DisplayServerConfig() {}
func (m *mockConfigManager) ReloadConfig() error  { return nil }

// setupTestDB creates an in-memory SQLite database for testing (pure Go, no CGO)
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Agent{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.InvocationLog{},
	)
	require.NoError(t, err)

	return db
}

// setupTestServer creates a test server with minimal dependencies
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db := setupTestDB(t)
	configManager := &mockConfigManager{authKey: "test-auth-key-12345678"}

	memStore := store.NewMemoryStore()
	t.Cleanup(func() { memStore.Close() })

	return &Server{
		DB:       db,
		config:   configManager,
		Registry: agents.NewRegistry(db, configManager),
		AgentSvc: services.NewAgentService(db, configManager),
		ChatSvc:  services.NewChatService(db, configManager, memStore),
	}
}
