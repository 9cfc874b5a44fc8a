package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CORTEX_ENV (or .env by default),
// then loads the corresponding .secret sidecar if it exists. All config
// is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CORTEX_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set. Valid values: openai, mock.
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// SummaryProvider returns the configured consolidation summarizer.
// Defaults to "deterministic" (the template-based, order-independent
// synthesizer). Setting it to "openai" opts into LLM-backed synthesis,
// which trades determinism for richer prose.
func SummaryProvider() string {
	p := os.Getenv("SUMMARY_PROVIDER")
	if p == "" {
		return "deterministic"
	}
	return p
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// EmbeddingRateLimitRPS returns the outbound requests-per-second limit
// applied to the embedding provider client. Defaults to 50.
func EmbeddingRateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("EMBEDDING_RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 50
	}
	return rps
}

// EmbeddingRateLimitBurst returns the burst size for the embedding
// provider rate limiter. Defaults to 10.
func EmbeddingRateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("EMBEDDING_RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 10
	}
	return burst
}

// ConsolidationLoadThreshold returns the maximum number of eligible
// episodic memories the scheduler will process in one run before
// refusing with LOAD_THRESHOLD_EXCEEDED. Defaults to 50000.
func ConsolidationLoadThreshold() int {
	v, err := strconv.Atoi(os.Getenv("CONSOLIDATION_LOAD_THRESHOLD"))
	if err != nil || v <= 0 {
		return 50000
	}
	return v
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
