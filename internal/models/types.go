package models

import (
	"time"

	"gorm.io/datatypes"
)

// Agent deployment type constants
const (
	DeploymentTypeServingEndpoint = "serving-endpoint"
	DeploymentTypeAgentBricksMAS  = "agent-bricks-mas"
)

// Agent auth mode constants
const (
	AuthModeEnvToken    = "env-token"
	AuthModePassthrough = "passthrough"
)

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Agent corresponds to the agents table. Each row describes one hosted
// serving endpoint that chats can be relayed to.
type Agent struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null;unique" json:"name"`
	DisplayName    string    `gorm:"type:varchar(255)" json:"display_name"`
	Description    string    `gorm:"type:varchar(512)" json:"description"`
	DeploymentType string    `gorm:"type:varchar(50);not null;default:'serving-endpoint'" json:"deployment_type"`
	AuthMode       string    `gorm:"type:varchar(50);not null;default:'env-token'" json:"auth_mode"`
	EndpointName   string    `gorm:"type:varchar(255);not null" json:"endpoint_name"`
	Enabled        bool      `gorm:"default:true;not null" json:"enabled"`
	Sort           int       `gorm:"default:0" json:"sort"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsValidDeploymentType reports whether the deployment type is known.
func IsValidDeploymentType(t string) bool {
	return t == DeploymentTypeServingEndpoint || t == DeploymentTypeAgentBricksMAS
}

// IsValidAuthMode reports whether the auth mode is known.
func IsValidAuthMode(m string) bool {
	return m == AuthModeEnvToken || m == AuthModePassthrough
}

// IsValidRole reports whether the message role is known.
func IsValidRole(r string) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	}
	return false
}

// Chat corresponds to the chats table. UpdatedAt is indexed because the
// capacity eviction policy removes the least recently updated chat.
type Chat struct {
	ID        string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string        `gorm:"type:varchar(255);not null" json:"title"`
	AgentID   uint          `gorm:"index" json:"agent_id"`
	Messages  []ChatMessage `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `gorm:"index" json:"updated_at"`
}

// ChatMessage corresponds to the chat_messages table. TraceSummary holds the
// multi-agent trace metadata emitted at the end of a streamed reply and
// ToolCalls holds the folded tool invocations, both stored as JSON.
type ChatMessage struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ChatID       string         `gorm:"type:varchar(36);not null;index" json:"chat_id"`
	Role         string         `gorm:"type:varchar(20);not null" json:"role"`
	Content      string         `gorm:"type:text" json:"content"`
	TraceID      string         `gorm:"type:varchar(128)" json:"trace_id,omitempty"`
	TraceSummary datatypes.JSON `gorm:"type:json" json:"trace_summary,omitempty"`
	ToolCalls    datatypes.JSON `gorm:"type:json" json:"tool_calls,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// InvocationLog corresponds to the invocation_logs table. One row per relay
// invocation, written asynchronously in batches.
type InvocationLog struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Timestamp       time.Time `gorm:"not null;index:idx_invocation_logs_agent_timestamp;index:idx_invocation_logs_success_timestamp" json:"timestamp"`
	AgentID         uint      `gorm:"not null;index:idx_invocation_logs_agent_timestamp" json:"agent_id"`
	AgentName       string    `gorm:"type:varchar(255);index" json:"agent_name"`
	ChatID          string    `gorm:"type:varchar(36);index" json:"chat_id"`
	ClientRequestID string    `gorm:"type:varchar(36)" json:"client_request_id"`
	TraceID         string    `gorm:"type:varchar(128)" json:"trace_id"`
	IsSuccess       bool      `gorm:"not null;index:idx_invocation_logs_success_timestamp" json:"is_success"`
	IsStream        bool      `gorm:"not null" json:"is_stream"`
	StatusCode      int       `gorm:"not null" json:"status_code"`
	Duration        int64     `gorm:"not null" json:"duration_ms"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message"`
	SourceIP        string    `gorm:"type:varchar(64)" json:"source_ip"`
	UserAgent       string    `gorm:"type:varchar(512)" json:"user_agent"`
}
