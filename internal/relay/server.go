// Package relay implements the chat invocation endpoint: it resolves the
// target agent, enforces the single-active-stream policy, and forwards the
// upstream SSE byte stream downstream (or collects it into one JSON response
// for non-streaming callers).
package relay

import (
	"net/http"
	"time"

	"agent-relay/internal/agents"
	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/httpclient"
	"agent-relay/internal/models"
	"agent-relay/internal/response"
	"agent-relay/internal/services"
	"agent-relay/internal/store"
	"agent-relay/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// activeStreamKeyPrefix scopes the single-active-stream flags in the store.
const activeStreamKeyPrefix = "chat:active:"

// ChatMessage is one conversation turn in a relay request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	AgentID  uint          `json:"agent_id"`
	ChatID   string        `json:"chat_id,omitempty"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// RelayServer handles agent invocation requests.
type RelayServer struct {
	configManager types.ConfigManager
	registry      *agents.Registry
	chatService   *services.ChatService
	logService    *services.InvocationLogService
	store         store.Store
	httpClient    *http.Client
	streamClient  *http.Client
}

// NewRelayServer creates a relay server with dedicated upstream clients: one
// with a request deadline for blocking calls, one deadline-free for streams.
func NewRelayServer(
	configManager types.ConfigManager,
	registry *agents.Registry,
	chatService *services.ChatService,
	logService *services.InvocationLogService,
	storeInst store.Store,
	clientManager *httpclient.Manager,
) *RelayServer {
	upstream := configManager.GetUpstreamConfig()
	connectTimeout := time.Duration(upstream.ConnectTimeout) * time.Second
	streamTimeout := time.Duration(upstream.StreamTimeout) * time.Second

	httpClient := clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:        connectTimeout,
		RequestTimeout:        streamTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: streamTimeout,
	})
	streamClient := clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:        connectTimeout,
		RequestTimeout:        0,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: streamTimeout,
		DisableCompression:    true,
	})

	return &RelayServer{
		configManager: configManager,
		registry:      registry,
		chatService:   chatService,
		logService:    logService,
		store:         storeInst,
		httpClient:    httpClient,
		streamClient:  streamClient,
	}
}

// HandleChat serves POST /api/chat.
func (s *RelayServer) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.ErrInvalidJSON)
		return
	}
	if req.AgentID == 0 {
		response.ErrorI18nFromAPIError(c, app_errors.ErrValidation, "validation.agent_id_required")
		return
	}
	if len(req.Messages) == 0 {
		response.ErrorI18nFromAPIError(c, app_errors.ErrValidation, "validation.messages_required")
		return
	}
	for _, message := range req.Messages {
		if !models.IsValidRole(message.Role) {
			response.ErrorI18nFromAPIError(c, app_errors.ErrValidation, "validation.invalid_role")
			return
		}
	}

	invocation, apiErr := s.registry.Resolve(c.Request, req.AgentID)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	if req.ChatID != "" {
		release, apiErr := s.acquireStreamLock(req.ChatID)
		if apiErr != nil {
			if apiErr == app_errors.ErrStreamActive {
				response.ErrorI18nFromAPIError(c, apiErr, "stream.active")
			} else {
				response.Error(c, apiErr)
			}
			return
		}
		defer release()
	}

	if req.Stream {
		s.relayStream(c, invocation, &req)
	} else {
		s.relayBlocking(c, invocation, &req)
	}
}

// acquireStreamLock claims the per-chat active-stream flag. The TTL is bound
// to the stream timeout so a crashed instance cannot wedge a conversation.
func (s *RelayServer) acquireStreamLock(chatID string) (func(), *app_errors.APIError) {
	key := activeStreamKeyPrefix + chatID
	ttl := time.Duration(s.configManager.GetUpstreamConfig().StreamTimeout) * time.Second

	acquired, err := s.store.SetNX(key, []byte("1"), ttl)
	if err != nil {
		// No lock, no stream: the one-stream-per-chat invariant holds even
		// when the store is down.
		logrus.WithError(err).Error("active-stream lock store unavailable, rejecting invoke")
		return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, "active-stream lock unavailable")
	}
	if !acquired {
		return nil, app_errors.ErrStreamActive
	}

	return func() {
		if err := s.store.Delete(key); err != nil {
			logrus.WithError(err).Warn("failed to release active-stream lock")
		}
	}, nil
}
