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
	Ai        AIConfig
	Retrieval RetrievalConfig
	Memory    MemoryConfig
	Ingest    IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKey         string
}

type RetrievalConfig struct {
	TopK     int
	DenseK   int
	LexicalK int
}

type MemoryConfig struct {
	TTL             time.Duration
	MaxMessages     int
	SummaryMaxChars int

	// Persisted recent messages are injected into a turn only when the
	// incoming request carries at most this many messages. Clients that
	// resend full history never get memory injected on top of it.
	HistoryInjectThreshold int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	IndexTopic   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		},
		Retrieval: RetrievalConfig{
			TopK:     getEnvAsInt("RETRIEVAL_TOP_K", 8),
			DenseK:   getEnvAsInt("RETRIEVAL_DENSE_K", 25),
			LexicalK: getEnvAsInt("RETRIEVAL_LEXICAL_K", 25),
		},
		Memory: MemoryConfig{
			TTL:                    time.Duration(getEnvAsInt("MEMORY_TTL_SECONDS", 60*60*24*7)) * time.Second,
			MaxMessages:            getEnvAsInt("MEMORY_MAX_MESSAGES", 12),
			SummaryMaxChars:        getEnvAsInt("MEMORY_SUMMARY_MAX_CHARS", 2000),
			HistoryInjectThreshold: getEnvAsInt("MEMORY_HISTORY_INJECT_THRESHOLD", 1),
		},
		Ingest: IngestConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 150),
			IndexTopic:   getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
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
