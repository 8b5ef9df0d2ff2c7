package handler

import (
	"encoding/json"

	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/response"
	"agent-relay/internal/services"

	"github.com/gin-gonic/gin"
)

// ChatCreateRequest defines the payload for creating a chat.
type ChatCreateRequest struct {
	Title   string `json:"title"`
	AgentID uint   `json:"agent_id"`
}

// ChatMessageInput is one message appended to a chat.
type ChatMessageInput struct {
	Role         string          `json:"role"`
	Content      string          `json:"content"`
	TraceID      string          `json:"trace_id"`
	TraceSummary json.RawMessage `json:"trace_summary"`
	ToolCalls    json.RawMessage `json:"tool_calls"`
}

// ChatMessagesRequest defines the payload for appending messages.
type ChatMessagesRequest struct {
	Messages []ChatMessageInput `json:"messages"`
}

// ListChats handles listing all chats with their messages.
func (s *Server) ListChats(c *gin.Context) {
	chats, err := s.ChatSvc.ListChats()
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, chats)
}

// CreateChat handles the creation of a new chat.
func (s *Server) CreateChat(c *gin.Context) {
	var req ChatCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	chat, err := s.ChatSvc.CreateChat(req.Title, req.AgentID)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, chat)
}

// GetChat handles fetching a single chat with its message history.
func (s *Server) GetChat(c *gin.Context) {
	chat, err := s.ChatSvc.GetChat(c.Param("id"))
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, chat)
}

// AddChatMessages handles appending messages to a chat.
func (s *Server) AddChatMessages(c *gin.Context) {
	var req ChatMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	inputs := make([]services.MessageInput, 0, len(req.Messages))
	for _, m := range req.Messages {
		inputs = append(inputs, services.MessageInput{
			Role:         m.Role,
			Content:      m.Content,
			TraceID:      m.TraceID,
			TraceSummary: m.TraceSummary,
			ToolCalls:    m.ToolCalls,
		})
	}

	count, err := s.ChatSvc.AddMessages(c.Param("id"), inputs)
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, gin.H{"message_count": count})
}

// DeleteChat handles removing a single chat.
func (s *Server) DeleteChat(c *gin.Context) {
	chatID := c.Param("id")
	if HandleServiceError(c, s.ChatSvc.DeleteChat(chatID)) {
		return
	}
	response.SuccessI18n(c, "chat.deleted", gin.H{"id": chatID})
}

// ClearChats handles removing every chat.
func (s *Server) ClearChats(c *gin.Context) {
	deleted, err := s.ChatSvc.ClearChats()
	if HandleServiceError(c, err) {
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
