package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Notes    NotesConfig    `yaml:"notes"`
	Chat     ChatConfig     `yaml:"chat"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"HOST"                    env-default:"0.0.0.0"`
	Port            string        `yaml:"port"             env:"PORT"                    env-default:"3000"`
	BaseURL         string        `yaml:"base_url"         env:"BASE_URL"                env-default:"http://localhost:3000"`
	CORSOrigins     string        `yaml:"cors_origins"     env:"CORS_ALLOWED_ORIGINS"    env-default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"               env:"DB_URL"                 env-required:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    env:"DB_MAX_IDLE_CONNS"      env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns"    env:"DB_MAX_OPEN_CONNS"      env-default:"100"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"   env-default:"1h"`
	AutoMigrate     bool          `yaml:"auto_migrate"      env:"DB_AUTO_MIGRATE"        env-default:"false"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"    env:"AUTH_JWT_SECRET"    env-required:"true"`
	JWTIssuer    string        `yaml:"jwt_issuer"    env:"AUTH_JWT_ISSUER"    env-default:"ai-notes"`
	SessionTTL   time.Duration `yaml:"session_ttl"   env:"AUTH_SESSION_TTL"   env-default:"168h"`
	CookieName   string        `yaml:"cookie_name"   env:"AUTH_COOKIE_NAME"   env-default:"ai_notes_session"`
	CookieSecure bool          `yaml:"cookie_secure" env:"AUTH_COOKIE_SECURE" env-default:"false"`
}

// LLMConfig selects and configures the model provider used by the assistant.
type LLMConfig struct {
	Provider    string        `yaml:"provider"    env:"LLM_PROVIDER"    env-default:"gemini"`
	Temperature float32       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	MaxTokens   int32         `yaml:"max_tokens"  env:"LLM_MAX_TOKENS"  env-default:"1024"`
	Timeout     time.Duration `yaml:"timeout"     env:"LLM_TIMEOUT"     env-default:"60s"`

	GeminiAPIKey  string `yaml:"gemini_api_key"  env:"GEMINI_API_KEY"`
	GeminiModelID string `yaml:"gemini_model_id" env:"GEMINI_MODEL_ID" env-default:"gemini-2.0-flash"`

	OpenAIAPIKey string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel  string `yaml:"openai_model"   env:"OPENAI_MODEL"   env-default:"gpt-4.1"`

	GroqAPIKey  string `yaml:"groq_api_key"  env:"GROQ_API_KEY"`
	GroqBaseURL string `yaml:"groq_base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	GroqModel   string `yaml:"groq_model"    env:"GROQ_MODEL_NAME"`

	VertexProjectID   string `yaml:"vertex_project_id"  env:"GOOGLE_CLOUD_PROJECT_ID"`
	VertexLocation    string `yaml:"vertex_location"    env:"GOOGLE_CLOUD_VERTEXAI_LOCATION" env-default:"us-east5"`
	VertexClaudeModel string `yaml:"vertex_claude_model" env:"CLAUDE_VERTEX_MODEL"`
	// VertexCredentials is a base64 encoded service account JSON.
	VertexCredentials string `yaml:"vertex_credentials" env:"GCP_SERVICE_ACCOUNT_CREDENTIALS"`
}

// NotesConfig holds editor and listing settings.
type NotesConfig struct {
	AutosaveDelay   time.Duration `yaml:"autosave_delay"   env:"NOTES_AUTOSAVE_DELAY"   env-default:"1500ms"`
	SearchThreshold float64       `yaml:"search_threshold" env:"NOTES_SEARCH_THRESHOLD" env-default:"0.4"`
	ListCacheSize   int           `yaml:"list_cache_size"  env:"NOTES_LIST_CACHE_SIZE"  env-default:"1024"`
	ListCacheTTL    time.Duration `yaml:"list_cache_ttl"   env:"NOTES_LIST_CACHE_TTL"   env-default:"10m"`
}

// ChatConfig holds assistant endpoint limits.
type ChatConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"CHAT_REQUESTS_PER_MINUTE" env-default:"20"`
}

// LogConfig holds logging settings. File is optional; when set, logs are
// also written to a rotating file.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"json"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"50"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"3"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
