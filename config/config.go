package config

import (
	"os"
	"strconv"
	"time"
)

// Config is read from the environment once at startup. A .env file is
// loaded by main before this runs.
type Config struct {
	ServerAddr string

	// Store selects the vector index backend: "postgres" or "memory".
	Store       string
	PostgresDSN string

	// Embedding provider settings. Ollama is the primary provider; an
	// OpenAI-compatible provider joins the chain when a key is set.
	EmbedDimension int
	EmbedBatchSize int
	EmbedTimeout   time.Duration

	OllamaURL        string
	OllamaEmbedModel string
	OllamaLLMModel   string

	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIEmbedModel string
	OpenAIChatModel  string

	// Answering settings.
	TopK             int
	HistoryWindow    int
	MaxContextTokens int
	LLMTimeout       time.Duration

	// Segmentation defaults applied when a request does not override them.
	SplitMethod string
	ChunkSize   int
	Overlap     int

	Debug bool
}

// Load builds the configuration from environment variables with defaults
// matching the original product (400-word chunks, 50-word overlap, 384-dim
// embeddings, top 4 units per question).
func Load() Config {
	return Config{
		ServerAddr: GetString("SERVER_ADDR", ":8080"),

		Store:       GetString("VECTOR_STORE", "postgres"),
		PostgresDSN: GetString("POSTGRES_DSN", ""),

		EmbedDimension: GetInt("EMBED_DIMENSION", 384),
		EmbedBatchSize: GetInt("EMBED_BATCH_SIZE", 32),
		EmbedTimeout:   time.Duration(GetInt("EMBED_TIMEOUT_SECS", 30)) * time.Second,

		OllamaURL:        GetString("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: GetString("OLLAMA_EMBED_MODEL", "all-minilm"),
		OllamaLLMModel:   GetString("OLLAMA_LLM_MODEL", "llama3.2"),

		OpenAIKey:        GetString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    GetString("OPENAI_BASE_URL", ""),
		OpenAIEmbedModel: GetString("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:  GetString("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		TopK:             GetInt("ANSWER_TOP_K", 4),
		HistoryWindow:    GetInt("ANSWER_HISTORY_WINDOW", 4),
		MaxContextTokens: GetInt("ANSWER_MAX_CONTEXT_TOKENS", 3000),
		LLMTimeout:       time.Duration(GetInt("LLM_TIMEOUT_SECS", 120)) * time.Second,

		SplitMethod: GetString("SPLIT_METHOD", "chunks"),
		ChunkSize:   GetInt("CHUNK_SIZE", 400),
		Overlap:     GetInt("CHUNK_OVERLAP", 50),

		Debug: GetBool("DEBUG", false),
	}
}

func GetString(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	return value
}

func GetInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func GetBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}
