// Package config loads process configuration: godotenv for local .env
// files, viper for layered env/file/default resolution, unmarshaled into a
// mapstructure-tagged tree.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all process configuration.
type Config struct {
	App       App       `mapstructure:"app"`
	Database  Database  `mapstructure:"database"`
	Ollama    Ollama    `mapstructure:"ollama"`
	Pinecone  Pinecone  `mapstructure:"pinecone"`
	Embedding Embedding `mapstructure:"embedding"`
	Search    Search    `mapstructure:"search"`
	Cache     Cache     `mapstructure:"cache"`
	Logging   Logging   `mapstructure:"logging"`
	OCR       OCR       `mapstructure:"ocr"`
	Server    Server    `mapstructure:"server"`
}

// App holds process-wide toggles.
type App struct {
	Env                 string `mapstructure:"env"`
	MaxFileSizeMB       int    `mapstructure:"max_file_size_mb"`
	MaxResumeTextLen    int    `mapstructure:"max_resume_text_length"`
	EnableMemoryCleanup bool   `mapstructure:"enable_memory_cleanup"`
}

// Database holds the MySQL connection settings (spec's MYSQL_* keys).
type Database struct {
	Host            string `mapstructure:"host"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"database"`
	Port            int    `mapstructure:"port"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

// DSN builds a go-sql-driver/mysql compatible data source name.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Ollama holds the LLM endpoint contract settings.
type Ollama struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Pinecone holds the vector store contract settings.
type Pinecone struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"api_key"`
	IndexName string `mapstructure:"index_name"`
	Cloud     string `mapstructure:"cloud"`
	Region    string `mapstructure:"region"`
}

// Embedding holds chunking and embedding dimension settings.
type Embedding struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	Dimension    int `mapstructure:"dimension"`
	BatchSize    int `mapstructure:"batch_size"`
}

// Search holds search-time tuning knobs.
type Search struct {
	TopKResults         int     `mapstructure:"top_k_results"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// Cache holds in-process caching limits.
type Cache struct {
	JobCacheMaxSize int `mapstructure:"job_cache_max_size"`
}

// Logging holds log verbosity and SQL tracing toggles.
type Logging struct {
	Level     string `mapstructure:"level"`
	SQLEcho   bool   `mapstructure:"sql_echo"`
	SQLLevel  string `mapstructure:"sql_log_level"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// OCR holds the out-of-process OCR and legacy-.doc converter endpoints.
type OCR struct {
	ServiceURL      string `mapstructure:"service_url"`
	DocConverterURL string `mapstructure:"doc_converter_url"`
}

// Server holds the HTTP API server's listen address and hardening knobs.
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin access control settings for the API server.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var globalConfig *Config

// Load loads configuration from defaults, an optional config file, and
// environment variables (a .env file is first loaded into the environment),
// in that order of increasing precedence, following the teacher's own
// Load() shape.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("atsresume")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration, loading it with defaults if Load
// has not yet been called.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return cfg
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.max_file_size_mb", 10)
	viper.SetDefault("app.max_resume_text_length", 50000)
	viper.SetDefault("app.enable_memory_cleanup", true)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "1h")

	viper.SetDefault("ollama.host", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3.2:3b")

	viper.SetDefault("pinecone.host", "https://api.pinecone.io")
	viper.SetDefault("pinecone.cloud", "aws")
	viper.SetDefault("pinecone.region", "us-east-1")
	viper.SetDefault("pinecone.index_name", "resumes")

	viper.SetDefault("embedding.chunk_size", 1000)
	viper.SetDefault("embedding.chunk_overlap", 200)
	viper.SetDefault("embedding.dimension", 768)
	viper.SetDefault("embedding.batch_size", 32)

	viper.SetDefault("search.top_k_results", 10)
	viper.SetDefault("search.similarity_threshold", 0.7)

	viper.SetDefault("cache.job_cache_max_size", 1000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.sql_echo", false)
	viper.SetDefault("logging.sql_log_level", "warn")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("server.max_upload_mb", 10)
	viper.SetDefault("server.cors.enabled", false)
}

func bindEnvironmentVariables() {
	bindEnvKeys("database.host", []string{"MYSQL_HOST"})
	bindEnvKeys("database.user", []string{"MYSQL_USER"})
	bindEnvKeys("database.password", []string{"MYSQL_PASSWORD"})
	bindEnvKeys("database.database", []string{"MYSQL_DATABASE"})
	bindEnvKeys("database.port", []string{"MYSQL_PORT"})

	bindEnvKeys("embedding.chunk_size", []string{"CHUNK_SIZE"})
	bindEnvKeys("embedding.chunk_overlap", []string{"CHUNK_OVERLAP"})
	bindEnvKeys("embedding.dimension", []string{"EMBEDDING_DIMENSION"})
	bindEnvKeys("embedding.batch_size", []string{"EMBEDDING_BATCH_SIZE"})

	bindEnvKeys("search.top_k_results", []string{"TOP_K_RESULTS"})
	bindEnvKeys("search.similarity_threshold", []string{"SIMILARITY_THRESHOLD"})

	bindEnvKeys("pinecone.host", []string{"PINECONE_HOST"})
	bindEnvKeys("pinecone.api_key", []string{"PINECONE_API_KEY"})
	bindEnvKeys("pinecone.index_name", []string{"PINECONE_INDEX_NAME"})
	bindEnvKeys("pinecone.cloud", []string{"PINECONE_CLOUD"})
	bindEnvKeys("pinecone.region", []string{"PINECONE_REGION"})

	bindEnvKeys("ollama.host", []string{"OLLAMA_HOST"})
	bindEnvKeys("ollama.api_key", []string{"OLLAMA_API_KEY"})

	bindEnvKeys("app.max_file_size_mb", []string{"MAX_FILE_SIZE_MB"})
	bindEnvKeys("app.max_resume_text_length", []string{"MAX_RESUME_TEXT_LENGTH"})
	bindEnvKeys("cache.job_cache_max_size", []string{"JOB_CACHE_MAX_SIZE"})
	bindEnvKeys("app.enable_memory_cleanup", []string{"ENABLE_MEMORY_CLEANUP"})

	bindEnvKeys("logging.level", []string{"LOG_LEVEL"})
	bindEnvKeys("logging.sql_echo", []string{"SQL_ECHO"})
	bindEnvKeys("logging.sql_log_level", []string{"SQL_LOG_LEVEL"})
	bindEnvKeys("logging.sentry_dsn", []string{"SENTRY_DSN"})

	bindEnvKeys("ocr.service_url", []string{"OCR_SERVICE_URL"})
	bindEnvKeys("ocr.doc_converter_url", []string{"DOC_CONVERTER_URL"})

	bindEnvKeys("server.host", []string{"SERVER_HOST"})
	bindEnvKeys("server.port", []string{"SERVER_PORT"})
	bindEnvKeys("server.max_upload_mb", []string{"MAX_UPLOAD_MB"})
}

// bindEnvKeys binds the first matching environment variable, in priority
// order, to a viper key. Mirrors the teacher's multi-alias API-key
// resolution (e.g. GEMINI_API_KEY / GOOGLE_GEMINI_API_KEY / GOOGLE_AI_API_KEY).
func bindEnvKeys(key string, envNames []string) {
	for _, env := range envNames {
		if val := os.Getenv(env); val != "" {
			viper.Set(key, val)
			return
		}
	}
	_ = viper.BindEnv(key, envNames...)
}
