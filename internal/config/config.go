package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/profiler/internal/llm"
)

type Config struct {
	// Reddit
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	MaxPosts           int
	MaxComments        int
	ParallelFetch      bool

	// Persona generation
	Backend      llm.Backend
	BackendError error // set when LLM_BACKEND holds an unknown value
	LLM          LLMConfig

	// Output
	OutputDir string
	LogLevel  string

	// Service mode
	Port        int
	APIToken    string
	DatabaseURL string
	NatsURL     string
	NatsToken   string
}

// LLMConfig carries credentials and models for every backend; only the
// selected backend's fields are used.
type LLMConfig struct {
	GeminiAPIKey      string
	GeminiModel       string
	GroqAPIKey        string
	GroqModel         string
	HuggingFaceAPIKey string
	HuggingFaceModel  string
	AnthropicAPIKey   string
	AnthropicModel    string
	LocalModel        string
	LocalEndpoint     string
}

// LoadDotenv copies settings from .env (or the given files) into the
// process environment. Variables already set win. A missing file is not
// an error.
func LoadDotenv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func Load() Config {
	backend, backendErr := llm.ParseBackend(envStr("LLM_BACKEND", ""))

	return Config{
		RedditClientID:     envStr("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: envStr("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    envStr("REDDIT_USER_AGENT", "profiler/0.1"),
		MaxPosts:           envInt("MAX_POSTS", 50),
		MaxComments:        envInt("MAX_COMMENTS", 100),
		ParallelFetch:      envBool("PARALLEL_FETCH", true),

		Backend:      backend,
		BackendError: backendErr,
		LLM: LLMConfig{
			GeminiAPIKey:      envStr("GEMINI_API_KEY", ""),
			GeminiModel:       envStr("GEMINI_MODEL", "gemini-2.5-flash"),
			GroqAPIKey:        envStr("GROQ_API_KEY", ""),
			GroqModel:         envStr("GROQ_MODEL", "llama-3.1-8b-instant"),
			HuggingFaceAPIKey: envStr("HUGGINGFACE_API_KEY", ""),
			HuggingFaceModel:  envStr("HUGGINGFACE_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			AnthropicAPIKey:   envStr("ANTHROPIC_API_KEY", ""),
			AnthropicModel:    envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			LocalModel:        envStr("LOCAL_LLM_MODEL", "llama2"),
			LocalEndpoint:     envStr("LOCAL_LLM_ENDPOINT", "http://localhost:11434/api/generate"),
		},

		OutputDir: envStr("OUTPUT_DIR", "outputs"),
		LogLevel:  envStr("LOG_LEVEL", "info"),

		Port:        envInt("PROFILER_PORT", 8760),
		APIToken:    envStr("PROFILER_API_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}
