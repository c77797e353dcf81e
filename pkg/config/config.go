package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	GigaChat  GigaChatConfig
	Embedder  EmbedderConfig
	Retrieval RetrievalConfig
	Corpus    CorpusConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Model              string
	Scope              string
	InsecureSkipVerify bool
}

// EmbedderConfig selects the query/corpus embedder implementation.
// "tfidf" needs no external service and rebuilds its vocabulary from
// the corpus at startup; "openai" talks to any OpenAI-compatible
// embeddings endpoint.
type EmbedderConfig struct {
	Type      string
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// RetrievalConfig tunes semantic search and the eligibility filter.
type RetrievalConfig struct {
	// TopK is the size of the final result set handed to the caller.
	TopK int
	// FetchK is how many candidates are pulled from the index before
	// filtering, giving the eligibility filter headroom.
	FetchK int
	// SimilarityThreshold discards weak matches, on a 0-1 scale.
	SimilarityThreshold float64
}

type CorpusConfig struct {
	// SchemesPath is the JSON snapshot consumed by cmd/seed.
	SchemesPath string
	// MinQualityScore excludes low-confidence records from indexing.
	MinQualityScore int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: plain environment variables work for
	// Docker/K8s deployments.

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	embedTimeout, _ := strconv.Atoi(getEnv("EMBEDDER_TIMEOUT_SECONDS", "30"))
	topK, _ := strconv.Atoi(getEnv("RETRIEVAL_TOP_K", "20"))
	fetchK, _ := strconv.Atoi(getEnv("RETRIEVAL_FETCH_K", "50"))
	threshold, _ := strconv.ParseFloat(getEnv("RETRIEVAL_SIMILARITY_THRESHOLD", "0.3"), 64)
	minQuality, _ := strconv.Atoi(getEnv("CORPUS_MIN_QUALITY_SCORE", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "scheme_saathi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: maxConns,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Embedder: EmbedderConfig{
			Type:      getEnv("EMBEDDER_TYPE", "tfidf"),
			BaseURL:   getEnv("EMBEDDER_BASE_URL", "https://api.openai.com/v1"),
			APIKeyEnv: getEnv("EMBEDDER_API_KEY_ENV", "OPENAI_API_KEY"),
			Model:     getEnv("EMBEDDER_MODEL", "text-embedding-3-small"),
			Timeout:   time.Duration(embedTimeout) * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK:                topK,
			FetchK:              fetchK,
			SimilarityThreshold: threshold,
		},
		Corpus: CorpusConfig{
			SchemesPath:     getEnv("CORPUS_SCHEMES_PATH", "data/schemes.json"),
			MinQualityScore: minQuality,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
