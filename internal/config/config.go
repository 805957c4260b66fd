package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. It is constructed once at process
// start and passed by reference into the orchestrator and its collaborators;
// core logic never reads the environment directly.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Meili     MeiliConfig
	Ingest    IngestConfig
	RateLimit RateLimitConfig
	OIDC      OIDCConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type MeiliConfig struct {
	URL       string
	APIKey    string
	APIKeyUID string
	Index     string
	// TokenTTL bounds the lifetime of issued tenant tokens.
	TokenTTL time.Duration
}

// IngestConfig controls the write path. ServiceToken authorizes CI/CD
// pipelines pushing documents and schemas; an empty token rejects all writes.
type IngestConfig struct {
	ServiceToken string
	// IndexQueueSize bounds the async search-index handoff.
	IndexQueueSize int
	// IndexMaxRetries bounds the per-document delivery retry policy.
	IndexMaxRetries int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type OIDCConfig struct {
	IssuerURL string
	ClientID  string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "lekton")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("MINIO_BUCKET", "lekton-docs")
	viper.SetDefault("MEILI_INDEX", "documents")
	viper.SetDefault("MEILI_TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("INGEST_INDEX_QUEUE_SIZE", 256)
	viper.SetDefault("INGEST_INDEX_MAX_RETRIES", 5)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnvOrPanic("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Meili: MeiliConfig{
			URL:       viper.GetString("MEILI_URL"),
			APIKey:    os.Getenv("MEILI_API_KEY"),
			APIKeyUID: viper.GetString("MEILI_API_KEY_UID"),
			Index:     viper.GetString("MEILI_INDEX"),
			TokenTTL:  time.Duration(viper.GetInt("MEILI_TOKEN_TTL_MINUTES")) * time.Minute,
		},
		Ingest: IngestConfig{
			ServiceToken:    os.Getenv("INGEST_SERVICE_TOKEN"),
			IndexQueueSize:  viper.GetInt("INGEST_INDEX_QUEUE_SIZE"),
			IndexMaxRetries: viper.GetInt("INGEST_INDEX_MAX_RETRIES"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		OIDC: OIDCConfig{
			IssuerURL: viper.GetString("OIDC_ISSUER_URL"),
			ClientID:  viper.GetString("OIDC_CLIENT_ID"),
		},
	}

	// Basic validation
	if cfg.Ingest.ServiceToken == "" {
		log.Println("WARNING: INGEST_SERVICE_TOKEN is not set; all ingest requests will be rejected")
	}

	return cfg, nil
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}
