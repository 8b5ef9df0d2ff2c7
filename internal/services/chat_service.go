package services

import (
	"encoding/json"
	"strings"
	"time"

	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/store"
	"agent-relay/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// I18nError represents an error that carries translation metadata.
type I18nError struct {
	APIError  *app_errors.APIError
	MessageID string
	Template  map[string]any
}

// Error implements the error interface.
func (e *I18nError) Error() string {
	if e == nil || e.APIError == nil {
		return ""
	}
	return e.APIError.Error()
}

// NewI18nError is a helper to create an I18n-enabled error.
func NewI18nError(apiErr *app_errors.APIError, msgID string, template map[string]any) *I18nError {
	return &I18nError{
		APIError:  apiErr,
		MessageID: msgID,
		Template:  template,
	}
}

// DefaultChatTitle is used when a chat is created without a title.
const DefaultChatTitle = "New Chat"

// MessageInput is one incoming message in a create/append request. TraceID,
// TraceSummary and ToolCalls are optional and normally only present on
// assistant messages persisted after a streamed reply.
type MessageInput struct {
	Role         string          `json:"role"`
	Content      string          `json:"content"`
	TraceID      string          `json:"trace_id,omitempty"`
	TraceSummary json.RawMessage `json:"trace_summary,omitempty"`
	ToolCalls    json.RawMessage `json:"tool_calls,omitempty"`
}

// StreamCancelChannel names the pub/sub channel carrying cancellation
// signals for a chat's in-flight stream.
func StreamCancelChannel(chatID string) string {
	return "chat:cancel:" + chatID
}

// ChatService handles business logic for chat storage.
type ChatService struct {
	db            *gorm.DB
	configManager types.ConfigManager
	store         store.Store
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB, configManager types.ConfigManager, storeInst store.Store) *ChatService {
	return &ChatService{
		db:            db,
		configManager: configManager,
		store:         storeInst,
	}
}

// ListChats returns all chats sorted by updated_at, newest first, with their
// messages in chronological order.
func (s *ChatService) ListChats() ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return chats, nil
}

// CreateChat creates a chat. When the chat list is at capacity, the least
// recently updated chat is evicted together with its messages.
func (s *ChatService) CreateChat(title string, agentID uint) (*models.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultChatTitle
	}

	maxChats := s.configManager.GetChatConfig().MaxChats

	chat := &models.Chat{
		ID:      uuid.NewString(),
		Title:   title,
		AgentID: agentID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Chat{}).Count(&count).Error; err != nil {
			return err
		}

		for count >= int64(maxChats) {
			var oldest models.Chat
			if err := tx.Order("updated_at ASC").First(&oldest).Error; err != nil {
				return err
			}
			if err := tx.Where("chat_id = ?", oldest.ID).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&oldest).Error; err != nil {
				return err
			}
			logrus.WithField("chat_id", oldest.ID).Info("evicted oldest chat to stay within capacity")
			count--
		}

		return tx.Create(chat).Error
	})
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}

	return chat, nil
}

// GetChat returns one chat with all its messages.
func (s *ChatService) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&chat, "id = ?", chatID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewI18nError(app_errors.ErrResourceNotFound, "chat.not_found", nil)
		}
		return nil, app_errors.ParseDBError(err)
	}
	return &chat, nil
}

// AddMessages appends messages to a chat and touches its updated_at. Returns
// the chat's total message count after the append.
func (s *ChatService) AddMessages(chatID string, inputs []MessageInput) (int64, error) {
	if len(inputs) == 0 {
		return 0, NewI18nError(app_errors.ErrValidation, "validation.messages_required", nil)
	}
	for _, input := range inputs {
		if !models.IsValidRole(input.Role) {
			return 0, NewI18nError(app_errors.ErrValidation, "validation.invalid_role", nil)
		}
	}

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
			return err
		}

		messages := make([]models.ChatMessage, 0, len(inputs))
		for _, input := range inputs {
			messages = append(messages, models.ChatMessage{
				ID:           uuid.NewString(),
				ChatID:       chatID,
				Role:         input.Role,
				Content:      input.Content,
				TraceID:      input.TraceID,
				TraceSummary: datatypes.JSON(input.TraceSummary),
				ToolCalls:    datatypes.JSON(input.ToolCalls),
			})
		}
		if err := tx.Create(&messages).Error; err != nil {
			return err
		}

		if err := tx.Model(&chat).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		return tx.Model(&models.ChatMessage{}).Where("chat_id = ?", chatID).Count(&total).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, NewI18nError(app_errors.ErrResourceNotFound, "chat.not_found", nil)
		}
		return 0, app_errors.ParseDBError(err)
	}

	return total, nil
}

// DeleteChat deletes one chat and its messages.
func (s *ChatService) DeleteChat(chatID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Chat{}, "id = ?", chatID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("chat_id = ?", chatID).Delete(&models.ChatMessage{}).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewI18nError(app_errors.ErrResourceNotFound, "chat.not_found", nil)
		}
		return app_errors.ParseDBError(err)
	}

	s.signalStreamCancel(chatID)
	return nil
}

// ClearChats deletes all chats and messages, returning how many chats were
// removed.
func (s *ChatService) ClearChats() (int64, error) {
	var ids []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Chat{}).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Chat{}).Error
	})
	if err != nil {
		return 0, app_errors.ParseDBError(err)
	}

	for _, id := range ids {
		s.signalStreamCancel(id)
	}
	return int64(len(ids)), nil
}

// signalStreamCancel notifies any instance streaming into the chat that the
// chat is gone. Best effort; a failed publish only gets logged.
func (s *ChatService) signalStreamCancel(chatID string) {
	if err := s.store.Publish(StreamCancelChannel(chatID), []byte("deleted")); err != nil {
		logrus.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Warn("failed to publish stream cancellation")
	}
}

// SaveAssistantReply persists a completed assistant reply to a chat. It is
// called from the relay after a stream finishes; failures are logged, never
// surfaced to the client, because the stream has already been delivered.
func (s *ChatService) SaveAssistantReply(chatID, content, traceID string, traceSummary, toolCalls []byte) {
	if chatID == "" {
		return
	}

	_, err := s.AddMessages(chatID, []MessageInput{{
		Role:         models.RoleAssistant,
		Content:      content,
		TraceID:      traceID,
		TraceSummary: traceSummary,
		ToolCalls:    toolCalls,
	}})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Warn("failed to persist assistant reply")
	}
}
