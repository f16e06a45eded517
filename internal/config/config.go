package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Ai        AIConfig
	Complaint ComplaintConfig
	Documents DocumentsConfig
	Chat      ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	PromptLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
	LogLevel   string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	EmbeddingProvider string // only "ollama" today
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "groq", "ollama", "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMApiKey         string
	Temperature       float64
	RefineQuery       bool
	NLPLanguage       string // empty disables the keyword signal
}

type ComplaintConfig struct {
	APIBaseURL       string
	RequestTimeout   time.Duration
	FuzzyThreshold   float64
	DraftTTL         time.Duration
	LookupCacheTTL   time.Duration
	ConfirmationMail bool
}

type DocumentsConfig struct {
	Dir          string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Topic        string
	Watch        bool
}

type ChatConfig struct {
	MemoryWindow int
	SessionTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PromptLogFilePath:  getEnv("PROMPT_LOG_FILE_PATH", "logs/llm_prompts.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("API_JWT_SECRET", ""),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CyBot"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "groq"),
			LLMModel:          getEnv("LLM_MODEL", "llama3-70b-8192"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMApiKey:         getEnv("GROQ_API_KEY", getEnv("LLM_API_KEY", "")),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			RefineQuery:       getEnvAsBool("REFINE_QUERY", true),
			NLPLanguage:       getEnv("NLP_LANGUAGE", "english"),
		},
		Complaint: ComplaintConfig{
			APIBaseURL:       getEnv("COMPLAINT_API_BASE_URL", "http://localhost:8000"),
			RequestTimeout:   getEnvAsDuration("COMPLAINT_API_TIMEOUT", 10*time.Second),
			FuzzyThreshold:   getEnvAsFloat("INTENT_FUZZY_THRESHOLD", 0.7),
			DraftTTL:         getEnvAsDuration("COMPLAINT_DRAFT_TTL", time.Hour),
			LookupCacheTTL:   getEnvAsDuration("COMPLAINT_CACHE_TTL", 5*time.Minute),
			ConfirmationMail: getEnvAsBool("COMPLAINT_CONFIRMATION_MAIL", false),
		},
		Documents: DocumentsConfig{
			Dir:          getEnv("DOCUMENTS_DIR", "data"),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 500),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 20),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", 2),
			Topic:        getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
			Watch:        getEnvAsBool("DOCUMENTS_WATCH", false),
		},
		Chat: ChatConfig{
			MemoryWindow: getEnvAsInt("MEMORY_K", 3),
			SessionTTL:   getEnvAsDuration("CHAT_SESSION_TTL", 2*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
