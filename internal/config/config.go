package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Session store backends.
const (
	SessionStoreAuto     = "auto"
	SessionStorePostgres = "postgres"
	SessionStoreMongo    = "mongo"
	SessionStoreMemory   = "memory"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Host       string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	HTTPPort   int    `envconfig:"SERVER_HTTP_PORT" default:"8000"`
	GRPCPort   int    `envconfig:"SERVER_GRPC_PORT" default:"9000"`
	EnableGRPC bool   `envconfig:"SERVER_ENABLE_GRPC" default:"false"`

	Environment string `envconfig:"SERVER_ENV" default:"development"`

	// Timeouts
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// Background persistence/event writes run detached from the request.
	BackgroundTimeout time.Duration `envconfig:"BACKGROUND_TIMEOUT" default:"10s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// AI text provider: gemini, vertex, openai, anthropic or azure. Empty picks the first configured.
	AIProvider string `envconfig:"AI_PROVIDER"`

	// Gemini API (API key auth)
	GeminiAPIKey string `envconfig:"GOOGLE_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Vertex AI Gemini (service account auth)
	GeminiSAPath string `envconfig:"GEMINI_SA_PATH"`
	GCPProjectID string `envconfig:"GOOGLE_CLOUD_PROJECT"`
	GCPLocation  string `envconfig:"GCP_LOCATION" default:"us-central1"`

	// OpenAI
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Anthropic
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-haiku-4-5-20251001"`

	// Azure OpenAI chat and whisper
	AzureChatEndpoint    string `envconfig:"AZURE_OPENAI_CHAT_ENDPOINT"`
	AzureChatKey         string `envconfig:"AZURE_OPENAI_CHAT_KEY"`
	AzureWhisperEndpoint string `envconfig:"AZURE_OPENAI_WHISPER_ENDPOINT"`
	AzureWhisperKey      string `envconfig:"AZURE_OPENAI_WHISPER_KEY"`

	// Azure AI Speech
	AzureAISpeechKey   string `envconfig:"AZURE_AI_SPEECH_KEY"`
	AzureServiceRegion string `envconfig:"AZURE_SERVICE_REGION"`

	// ElevenLabs
	ElevenLabsAPIKey       string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL      string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io/v1"`
	ElevenLabsModel        string `envconfig:"ELEVENLABS_MODEL" default:"eleven_turbo_v2"`
	ElevenLabsDefaultVoice string `envconfig:"ELEVENLABS_DEFAULT_VOICE" default:"pNInz6obpgDQGcFmaJgB"`

	// Redis
	RedisURL     string        `envconfig:"REDIS_URL"`
	HistoryTTL   time.Duration `envconfig:"CONVERSATION_HISTORY_TTL" default:"24h"`
	VoiceListTTL time.Duration `envconfig:"VOICE_LIST_TTL" default:"10m"`

	// Session store
	SessionStore  string `envconfig:"SESSION_STORE" default:"auto"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	DBMaxConns    int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DBMinConns    int32  `envconfig:"DATABASE_MIN_CONNS" default:"0"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"vocal_coach"`

	// Cloudflare R2
	CloudflareAccessKeyID string `envconfig:"CLOUDFLARE_ACCESS_KEY_ID"`
	CloudflareSecretKey   string `envconfig:"CLOUDFLARE_SECRET_ACCESS_KEY"`
	CloudflareR2Endpoint  string `envconfig:"CLOUDFLARE_R2_ENDPOINT"`
	CloudflarePublicURL   string `envconfig:"CLOUDFLARE_PUBLIC_URL"`
	CloudflareBucketName  string `envconfig:"CLOUDFLARE_BUCKET_NAME"`

	// Google Cloud Storage (used when R2 is not configured)
	GCSBucketName string `envconfig:"GCS_BUCKET_NAME"`

	// Pub/Sub session events
	PubSubProjectID string `envconfig:"PUBSUB_PROJECT_ID"`
	PubSubTopicID   string `envconfig:"PUBSUB_TOPIC_ID"`

	// API keys accepted in X-API-Key. Empty disables the check.
	APIKeys []string `envconfig:"API_KEYS"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Accept,Authorization,Content-Type,X-Request-ID,X-API-Key"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreAuto, SessionStorePostgres, SessionStoreMongo, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q", c.SessionStore)
	}
	switch c.AIProvider {
	case "", "gemini", "vertex", "openai", "anthropic", "azure":
	default:
		return fmt.Errorf("invalid AI_PROVIDER %q", c.AIProvider)
	}
	return nil
}

// HTTPAddress returns the HTTP server address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// GRPCAddress returns the gRPC server address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasR2 reports whether all Cloudflare R2 settings are present.
func (c *Config) HasR2() bool {
	return c.CloudflareAccessKeyID != "" && c.CloudflareSecretKey != "" &&
		c.CloudflareR2Endpoint != "" && c.CloudflareBucketName != ""
}
