package locales

// MessagesEnUS English (US) translations
var MessagesEnUS = map[string]string{
	// Common messages
	"success":        "Operation successful",
	"common.success": "Success",
	"error":          "Operation failed",
	"unauthorized":   "Unauthorized",
	"forbidden":      "Forbidden",
	"not_found":      "Not found",
	"bad_request":    "Bad request",
	"internal_error": "Internal error",
	"invalid_param":  "Invalid parameter",

	// Authentication related
	"auth.invalid_key":               "Invalid authorization key",
	"auth.key_required":              "Authorization key required",
	"auth.invalid_request":           "Invalid request format",
	"auth.authentication_successful": "Authentication successful",
	"auth.authentication_failed":     "Authentication failed",

	// Chat related
	"chat.created":   "Chat created successfully",
	"chat.updated":   "Chat updated successfully",
	"chat.deleted":   "Chat deleted successfully",
	"chat.not_found": "Chat not found",
	"chat.evicted":   "Oldest chat removed to stay within capacity",

	// Agent related
	"agent.created":   "Agent created successfully",
	"agent.updated":   "Agent updated successfully",
	"agent.deleted":   "Agent deleted successfully",
	"agent.not_found": "Agent not found",
	"agent.disabled":  "Agent is disabled",

	// Stream related
	"stream.active":    "A stream is already active for this chat",
	"stream.canceled":  "Stream canceled",
	"stream.completed": "Stream completed",

	// Logs related
	"logs.cleared":  "Logs cleared",
	"logs.exported": "Logs exported successfully",

	// Validation related
	"validation.agent_id_required":         "agent_id field is required",
	"validation.messages_required":         "messages field must contain at least one message",
	"validation.invalid_agent_name":        "Invalid agent name. Can only contain lowercase letters, numbers, hyphens or underscores, 1-100 characters",
	"validation.invalid_deployment_type":   "Invalid deployment type. Supported types: {{.types}}",
	"validation.invalid_auth_mode":         "Invalid auth mode. Supported modes: {{.modes}}",
	"validation.invalid_role":              "Invalid message role. Must be 'user', 'assistant', 'system' or 'tool'",
	"validation.invalid_chat_id":           "Invalid chat ID format",
	"validation.title_empty":               "Chat title cannot be empty or contain only spaces",
	"validation.endpoint_name_required":    "Endpoint name is required",
	"validation.passthrough_token_missing": "Passthrough agents require a bearer token on the request",

	// Upstream related
	"upstream.error":       "Upstream service error",
	"upstream.timeout":     "Upstream service timed out",
	"upstream.unreachable": "Upstream service unreachable",
}
