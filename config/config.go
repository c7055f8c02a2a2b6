package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is wrapped by Validate when a required secret is absent.
var ErrMissingCredential = errors.New("missing credential")

// Embedding provider modes
const (
	EmbeddingModeChat       = "chat"
	EmbeddingModeEmbeddings = "embeddings"
)

// Vector store backends
const (
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Embedding     EmbeddingConfig
	VectorStore   VectorStoreConfig
	Retrieval     RetrievalConfig
	Observability ObservabilityConfig
	CORS          CORSConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// EmbeddingConfig configures the OpenAI-compatible embedding provider
type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	OrgID      string
	Model      string
	Mode       string // chat or embeddings
	Timeout    time.Duration
	Dimensions int
}

// VectorStoreConfig selects and configures the match_documents backend
type VectorStoreConfig struct {
	Backend    string // postgres or postgrest
	Timeout    time.Duration
	Function   string
	InitSchema bool
	Database   DatabaseConfig
	PostgREST  PostgRESTConfig
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// PostgRESTConfig holds the Supabase-style REST endpoint and service key
type PostgRESTConfig struct {
	URL    string
	APIKey string
}

// RetrievalConfig holds request defaults and bounds
type RetrievalConfig struct {
	DefaultTopK      int
	MaxTopK          int
	DefaultThreshold float64
	LogQueryChars    int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// CORSConfig holds cross-origin settings for browser callers
type CORSConfig struct {
	AllowedOrigins []string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			TLS: struct {
				Enabled  bool
				CertFile string
				KeyFile  string
			}{
				Enabled:  getEnvAsBool("TLS_ENABLED", false),
				CertFile: getEnv("TLS_CERT_FILE", "certs/cert.pem"),
				KeyFile:  getEnv("TLS_KEY_FILE", "certs/key.pem"),
			},
		},
		Embedding: EmbeddingConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OrgID:      getEnv("OPENAI_ORG_ID", ""),
			Model:      getEnv("EMBEDDING_MODEL", "gpt-4o-mini"),
			Mode:       strings.ToLower(getEnv("EMBEDDING_MODE", EmbeddingModeChat)),
			Timeout:    getEnvAsDuration("EMBEDDING_TIMEOUT", 20*time.Second),
			Dimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		},
		VectorStore: VectorStoreConfig{
			Backend:    strings.ToLower(getEnv("VECTOR_STORE_BACKEND", BackendPostgres)),
			Timeout:    getEnvAsDuration("VECTOR_STORE_TIMEOUT", 10*time.Second),
			Function:   getEnv("VECTOR_STORE_FUNCTION", "match_documents"),
			InitSchema: getEnvAsBool("VECTOR_STORE_INIT_SCHEMA", false),
			Database:   loadDatabaseConfig(),
			PostgREST: PostgRESTConfig{
				URL:    getEnv("SUPABASE_URL", ""),
				APIKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			},
		},
		Retrieval: RetrievalConfig{
			DefaultTopK:      getEnvAsInt("RETRIEVAL_DEFAULT_TOP_K", 5),
			MaxTopK:          getEnvAsInt("RETRIEVAL_MAX_TOP_K", 100),
			DefaultThreshold: getEnvAsFloat("RETRIEVAL_DEFAULT_THRESHOLD", 0.7),
			LogQueryChars:    getEnvAsInt("RETRIEVAL_LOG_QUERY_CHARS", 50),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set.
// Absent secrets produce errors wrapping ErrMissingCredential.
func (c *Config) Validate() error {
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingCredential)
	}
	switch c.Embedding.Mode {
	case EmbeddingModeChat, EmbeddingModeEmbeddings:
	default:
		return fmt.Errorf("invalid EMBEDDING_MODE %q: must be %q or %q", c.Embedding.Mode, EmbeddingModeChat, EmbeddingModeEmbeddings)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.Embedding.Dimensions)
	}

	switch c.VectorStore.Backend {
	case BackendPostgres:
		if err := c.VectorStore.Database.validate(); err != nil {
			return err
		}
	case BackendPostgREST:
		if c.VectorStore.PostgREST.URL == "" {
			return fmt.Errorf("%w: SUPABASE_URL is required for the postgrest backend", ErrMissingCredential)
		}
		if c.VectorStore.PostgREST.APIKey == "" {
			return fmt.Errorf("%w: SUPABASE_SERVICE_ROLE_KEY is required for the postgrest backend", ErrMissingCredential)
		}
		if _, err := url.ParseRequestURI(c.VectorStore.PostgREST.URL); err != nil {
			return fmt.Errorf("invalid SUPABASE_URL: %w", err)
		}
	default:
		return fmt.Errorf("invalid VECTOR_STORE_BACKEND %q: must be %q or %q", c.VectorStore.Backend, BackendPostgres, BackendPostgREST)
	}
	if !identifierPattern.MatchString(c.VectorStore.Function) {
		return fmt.Errorf("invalid VECTOR_STORE_FUNCTION %q", c.VectorStore.Function)
	}

	// The router's write deadline answers with a bare 504, so both outbound
	// calls must finish before it can fire.
	if w := c.Server.WriteTimeout; w > 0 && c.Embedding.Timeout+c.VectorStore.Timeout >= w {
		return fmt.Errorf("EMBEDDING_TIMEOUT (%s) + VECTOR_STORE_TIMEOUT (%s) must be less than SERVER_WRITE_TIMEOUT (%s)",
			c.Embedding.Timeout, c.VectorStore.Timeout, w)
	}

	r := c.Retrieval
	if r.MaxTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_MAX_TOP_K must be positive, got %d", r.MaxTopK)
	}
	if r.DefaultTopK <= 0 || r.DefaultTopK > r.MaxTopK {
		return fmt.Errorf("RETRIEVAL_DEFAULT_TOP_K must be between 1 and %d, got %d", r.MaxTopK, r.DefaultTopK)
	}
	if r.DefaultThreshold < 0 || r.DefaultThreshold > 1 {
		return fmt.Errorf("RETRIEVAL_DEFAULT_THRESHOLD must be between 0 and 1, got %v", r.DefaultThreshold)
	}
	if r.LogQueryChars < 0 {
		return fmt.Errorf("RETRIEVAL_LOG_QUERY_CHARS must not be negative, got %d", r.LogQueryChars)
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.ConnectionString != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("%w: set DATABASE_URL or DB_HOST for the postgres backend", ErrMissingCredential)
	}
	if c.User == "" {
		return fmt.Errorf("%w: DB_USER is required", ErrMissingCredential)
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil && u.Host != "" {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}
	cfg.Host = getEnv("DB_HOST", "")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "postgres")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
