package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetAuthConfig() AuthConfig
	GetCORSConfig() CORSConfig
	GetPerformanceConfig() PerformanceConfig
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetUpstreamConfig() UpstreamConfig
	GetChatConfig() ChatConfig
	GetEffectiveServerConfig() ServerConfig
	GetRedisDSN() string
	IsDebugMode() bool
	Validate() error
	DisplayServerConfig()
	ReloadConfig() error
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Key string `json:"key"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// PerformanceConfig represents performance configuration
type PerformanceConfig struct {
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// UpstreamConfig represents serving-platform configuration. Host and Token
// are the credentials used for agents configured with the env-token auth
// mode; passthrough agents forward the caller's bearer credential instead.
type UpstreamConfig struct {
	Host           string `json:"host"`
	Token          string `json:"-"`
	StreamTimeout  int    `json:"stream_timeout"`
	ConnectTimeout int    `json:"connect_timeout"`
}

// ChatConfig represents chat storage configuration
type ChatConfig struct {
	// MaxChats is the chat list capacity; creating a chat beyond it evicts
	// the least recently updated one.
	MaxChats int `json:"max_chats"`
	// LogWriteIntervalSeconds controls how often buffered invocation logs
	// are flushed to the database.
	LogWriteIntervalSeconds int `json:"log_write_interval_seconds"`
}
