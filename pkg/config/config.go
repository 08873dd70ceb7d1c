package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// CrossEncoder configuration
	CrossEncoder CrossEncoderConfig `mapstructure:"crossencoder"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Questions configuration
	Questions QuestionsConfig `mapstructure:"questions"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds graph database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // neo4j, memory
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RetrievalConfig holds the retrieval pipeline parameters
type RetrievalConfig struct {
	Namespace        string        `mapstructure:"namespace"`
	DefaultMode      string        `mapstructure:"default_mode"`
	DefaultTopK      int           `mapstructure:"default_top_k"`
	SeedCandidates   int           `mapstructure:"seed_candidates"`
	EmbedTopK        int           `mapstructure:"embed_top_k"`
	NeighborLimit    int           `mapstructure:"neighbor_limit"`
	NeighborDiscount float64       `mapstructure:"neighbor_discount"`
	HopDepth         int           `mapstructure:"hop_depth"`
	DiscountPolicy   string        `mapstructure:"discount_policy"` // compound, once
	Alpha            float64       `mapstructure:"alpha"`
	RerankTopN       int           `mapstructure:"rerank_top_n"`
	GraphTimeout     time.Duration `mapstructure:"graph_timeout"`
	ProviderTimeout  time.Duration `mapstructure:"provider_timeout"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider      string `mapstructure:"provider"` // openai, local
	Model         string `mapstructure:"model"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	MaxInputChars int    `mapstructure:"max_input_chars"`
	CacheDir      string `mapstructure:"cache_dir"`
}

// CrossEncoderConfig holds cross-encoder provider configuration
type CrossEncoderConfig struct {
	Provider       string `mapstructure:"provider"` // reranker, llm, rustbert
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// QuestionsConfig holds the sample question source configuration
type QuestionsConfig struct {
	SamplesPath string `mapstructure:"samples_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Database defaults
	viper.SetDefault("database.driver", "neo4j")
	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "neo4j")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "neo4j")

	// Retrieval defaults
	viper.SetDefault("retrieval.namespace", "Statute")
	viper.SetDefault("retrieval.default_mode", "hybrid-fusion")
	viper.SetDefault("retrieval.default_top_k", 5)
	viper.SetDefault("retrieval.seed_candidates", 20)
	viper.SetDefault("retrieval.embed_top_k", 5)
	viper.SetDefault("retrieval.neighbor_limit", 10)
	viper.SetDefault("retrieval.neighbor_discount", 0.8)
	viper.SetDefault("retrieval.hop_depth", 1)
	viper.SetDefault("retrieval.discount_policy", "compound")
	viper.SetDefault("retrieval.alpha", 0.5)
	viper.SetDefault("retrieval.rerank_top_n", 5)
	viper.SetDefault("retrieval.graph_timeout", "10s")
	viper.SetDefault("retrieval.provider_timeout", "30s")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.max_input_chars", 10000)

	// CrossEncoder defaults
	viper.SetDefault("crossencoder.provider", "reranker")
	viper.SetDefault("crossencoder.model", "BAAI/bge-reranker-v2-m3")
	viper.SetDefault("crossencoder.max_concurrency", 5)

	// Alert defaults
	viper.SetDefault("alert.enabled", false)
	viper.SetDefault("alert.smtp_port", 587)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.lexigraph/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Provider credentials
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
		if config.CrossEncoder.Provider == "llm" {
			config.CrossEncoder.APIKey = apiKey
		}
	}
	if apiKey := os.Getenv("RERANKER_API_KEY"); apiKey != "" {
		config.CrossEncoder.APIKey = apiKey
	}

	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	// Generic database settings
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dbURI := os.Getenv("DB_URI"); dbURI != "" {
		config.Database.URI = dbURI
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Retrieval settings
	if ns := os.Getenv("LEXIGRAPH_NAMESPACE"); ns != "" {
		config.Retrieval.Namespace = ns
	}
	if mode := os.Getenv("LEXIGRAPH_MODE"); mode != "" {
		config.Retrieval.DefaultMode = mode
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}

	// Sample question settings
	if path := os.Getenv("LEXIGRAPH_SAMPLES_PATH"); path != "" {
		config.Questions.SamplesPath = path
	}
}
