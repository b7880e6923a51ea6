package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL          string
	LLMModelName        string
	LLMAPIKey           string
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingVectorSize int
	QdrantURL           string
	QdrantCollection    string
	DBPath              string
	APIPort             string
	SessionCapacity     int
	KnowledgeConfigPath string
	LogLevel            slog.Level
	LogFormat           string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up towards the project root looking for a .env file
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:          getEnv("LLM_BASE_URL", "https://router.huggingface.co"),
		LLMModelName:        getEnv("LLM_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		LLMAPIKey:           getEnv("LLM_API_KEY", ""),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName:  getEnv("EMBEDDING_MODEL", "paraphrase-multilingual-MiniLM-L12-v2"),
		QdrantURL:           getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:    getEnv("QDRANT_COLLECTION", "student_documents"),
		DBPath:              getEnv("DB_PATH", "./data/campus-assistant.db"),
		APIPort:             getEnv("API_PORT", "8000"),
		KnowledgeConfigPath: getEnv("KNOWLEDGE_CONFIG", ""),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	// EMBEDDING_VECTOR_SIZE must match the output size of the embeddings model.
	// If it changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	capacityStr := getEnv("SESSION_CAPACITY", "256")
	capacity, err := strconv.Atoi(capacityStr)
	if err != nil || capacity <= 0 {
		return nil, fmt.Errorf("SESSION_CAPACITY must be a positive integer")
	}
	cfg.SessionCapacity = capacity

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	// Create the data directory for the sqlite file if needed
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
