package router

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-relay/internal/agents"
	"agent-relay/internal/handler"
	"agent-relay/internal/httpclient"
	"agent-relay/internal/i18n"
	"agent-relay/internal/models"
	"agent-relay/internal/relay"
	"agent-relay/internal/services"
	"agent-relay/internal/store"
	"agent-relay/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var emptyFS embed.FS

func init() {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
}

type testConfig struct{}

func (testConfig) GetAuthConfig() types.AuthConfig { return types.AuthConfig{Key: "router-key"} }
func (testConfig) GetCORSConfig() types.CORSConfig { return types.CORSConfig{} }
func (testConfig) GetPerformanceConfig() types.PerformanceConfig {
	return types.PerformanceConfig{MaxConcurrentRequests: 10}
}
func (testConfig) GetLogConfig() types.LogConfig           { return types.LogConfig{} }
func (testConfig) GetDatabaseConfig() types.DatabaseConfig { return types.DatabaseConfig{} }
func (testConfig) GetUpstreamConfig() types.UpstreamConfig {
	return types.UpstreamConfig{Host: "https://workspace.example.com", Token: "dapi-test"}
}
func (testConfig) GetChatConfig() types.ChatConfig {
	return types.ChatConfig{MaxChats: 10, LogWriteIntervalSeconds: 30}
}
func (testConfig) GetEffectiveServerConfig() types.ServerConfig { return types.ServerConfig{} }
func (testConfig) GetRedisDSN() string                          { return "" }
func (testConfig) IsDebugMode() bool                            { return false }
func (testConfig) Validate() error                              { return nil }
func (testConfig) DisplayServerConfig()                         {}
func (testConfig) ReloadConfig() error                          { return nil }

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Agent{}, &models.Chat{}, &models.ChatMessage{}, &models.InvocationLog{}))

	config := testConfig{}
	memStore := store.NewMemoryStore()
	t.Cleanup(func() { memStore.Close() })

	registry := agents.NewRegistry(db, config)
	chatService := services.NewChatService(db, config, memStore)
	agentService := services.NewAgentService(db, config)

	relayServer := relay.NewRelayServer(config, registry, chatService, nil, memStore, httpclient.NewManager())

	serverHandler := handler.NewServer(handler.ServerParams{
		DB:       db,
		Config:   config,
		Registry: registry,
		AgentSvc: agentService,
		ChatSvc:  chatService,
	})

	return NewRouter(serverHandler, relayServer, config, emptyFS, []byte("<html></html>"))
}

func TestRouterHealthIsPublic(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := setupRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/agents"},
		{http.MethodGet, "/api/chats"},
		{http.MethodGet, "/api/logs"},
		{http.MethodPost, "/api/chat"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestRouterAuthorizedAccess(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer router-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterLoginIsPublic(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	// Reachable without auth middleware; fails on the payload, not on authorization
	assert.NotEqual(t, http.StatusNotFound, w.Code)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestRouterServesIndexFallback(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chats/some-page", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRouterUnknownAPIRoute(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
