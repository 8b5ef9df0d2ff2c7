package router

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"agent-relay/internal/handler"
	"agent-relay/internal/i18n"
	"agent-relay/internal/middleware"
	"agent-relay/internal/relay"
	"agent-relay/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"

	"github.com/gin-gonic/gin"
)

type embedFileSystem struct {
	http.FileSystem
}

func (e embedFileSystem) Exists(prefix string, path string) bool {
	_, err := e.Open(path)
	return err == nil
}

func EmbedFolder(fsEmbed embed.FS, targetPath string) static.ServeFileSystem {
	efs, err := fs.Sub(fsEmbed, targetPath)
	if err != nil {
		panic(err)
	}
	return embedFileSystem{
		FileSystem: http.FS(efs),
	}
}

func NewRouter(
	serverHandler *handler.Server,
	relayServer *relay.RelayServer,
	configManager types.ConfigManager,
	buildFS embed.FS,
	indexPage []byte,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.RateLimiter(configManager.GetPerformanceConfig()))
	router.Use(middleware.SecurityHeaders())
	startTime := time.Now()
	router.Use(func(c *gin.Context) {
		c.Set("serverStartTime", startTime)
		c.Next()
	})

	// Register routes
	registerSystemRoutes(router, serverHandler)
	registerAPIRoutes(router, serverHandler, relayServer, configManager)
	registerFrontendRoutes(router, buildFS, indexPage)

	return router
}

// registerSystemRoutes registers system-level routes
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/health", serverHandler.Health)
}

// registerAPIRoutes registers API routes
func registerAPIRoutes(
	router *gin.Engine,
	serverHandler *handler.Server,
	relayServer *relay.RelayServer,
	configManager types.ConfigManager,
) {
	api := router.Group("/api")
	api.Use(i18n.Middleware())

	authConfig := configManager.GetAuthConfig()

	// Public routes
	api.POST("/auth/login", serverHandler.Login)

	// Protected routes
	protectedAPI := api.Group("")
	protectedAPI.Use(middleware.Auth(authConfig))
	registerProtectedAPIRoutes(protectedAPI, serverHandler, relayServer)
}

// registerProtectedAPIRoutes registers protected API routes
func registerProtectedAPIRoutes(api *gin.RouterGroup, serverHandler *handler.Server, relayServer *relay.RelayServer) {
	// Relay endpoint. The SSE response is written directly by the relay, so
	// it must stay out of the gzip-wrapped frontend chain.
	api.POST("/chat", relayServer.HandleChat)

	agents := api.Group("/agents")
	{
		agents.GET("", serverHandler.ListAgents)
		agents.POST("", serverHandler.CreateAgent)
		agents.PUT("/:id", serverHandler.UpdateAgent)
		agents.DELETE("/:id", serverHandler.DeleteAgent)
	}

	chats := api.Group("/chats")
	{
		chats.GET("", serverHandler.ListChats)
		chats.POST("", serverHandler.CreateChat)
		chats.DELETE("", serverHandler.ClearChats)
		chats.GET("/:id", serverHandler.GetChat)
		chats.DELETE("/:id", serverHandler.DeleteChat)
		chats.POST("/:id/messages", serverHandler.AddChatMessages)
	}

	logs := api.Group("/logs")
	{
		logs.GET("", serverHandler.GetLogs)
	}
}

// registerFrontendRoutes registers frontend routes
func registerFrontendRoutes(router *gin.Engine, buildFS embed.FS, indexPage []byte) {
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Use static resource cache middleware
	router.Use(middleware.StaticCache())

	router.Use(static.Serve("/", EmbedFolder(buildFS, "web/dist")))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.RequestURI, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}
		// HTML pages are not cached to ensure updates take effect immediately
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})
}
