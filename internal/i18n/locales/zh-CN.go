package locales

// MessagesZhCN Chinese (Simplified) translations
var MessagesZhCN = map[string]string{
	// Common messages
	"success":        "操作成功",
	"common.success": "成功",
	"error":          "操作失败",
	"unauthorized":   "未授权",
	"forbidden":      "禁止访问",
	"not_found":      "未找到",
	"bad_request":    "请求错误",
	"internal_error": "内部错误",
	"invalid_param":  "无效参数",

	// Authentication related
	"auth.invalid_key":               "无效的授权密钥",
	"auth.key_required":              "需要授权密钥",
	"auth.invalid_request":           "无效的请求格式",
	"auth.authentication_successful": "认证成功",
	"auth.authentication_failed":     "认证失败",

	// Chat related
	"chat.created":   "会话创建成功",
	"chat.updated":   "会话更新成功",
	"chat.deleted":   "会话删除成功",
	"chat.not_found": "会话不存在",
	"chat.evicted":   "已删除最旧会话以保持容量限制",

	// Agent related
	"agent.created":   "智能体创建成功",
	"agent.updated":   "智能体更新成功",
	"agent.deleted":   "智能体删除成功",
	"agent.not_found": "智能体不存在",
	"agent.disabled":  "智能体已禁用",

	// Stream related
	"stream.active":    "该会话已有进行中的流",
	"stream.canceled":  "流已取消",
	"stream.completed": "流已完成",

	// Logs related
	"logs.cleared":  "日志已清除",
	"logs.exported": "日志导出成功",

	// Validation related
	"validation.agent_id_required":         "agent_id 字段为必填项",
	"validation.messages_required":         "messages 字段至少包含一条消息",
	"validation.invalid_agent_name":        "无效的智能体名称。只能包含小写字母、数字、中划线或下划线，长度 1-100",
	"validation.invalid_deployment_type":   "无效的部署类型。支持的类型：{{.types}}",
	"validation.invalid_auth_mode":         "无效的认证模式。支持的模式：{{.modes}}",
	"validation.invalid_role":              "无效的消息角色。必须为 'user'、'assistant'、'system' 或 'tool'",
	"validation.invalid_chat_id":           "无效的会话 ID 格式",
	"validation.title_empty":               "会话标题不能为空或仅包含空格",
	"validation.endpoint_name_required":    "端点名称为必填项",
	"validation.passthrough_token_missing": "透传模式的智能体需要请求携带 Bearer 令牌",

	// Upstream related
	"upstream.error":       "上游服务错误",
	"upstream.timeout":     "上游服务超时",
	"upstream.unreachable": "上游服务不可达",
}
