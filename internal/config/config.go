package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Firebase FirebaseConfig
	Session  SessionConfig
	GoFormz  GoFormzConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// FirebaseConfig carries the Admin SDK credentials. CredentialsJSON is a
// base64 encoded service account key; when empty the Admin SDK is not
// initialized and authenticated routes answer 503.
type FirebaseConfig struct {
	CredentialsJSON string
	ProjectID       string
}

// SessionConfig controls server-minted Firebase session cookies. When the
// cookie name is empty, session-cookie login is disabled and only bearer
// tokens are accepted.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type GoFormzConfig struct {
	BaseURL  string
	APIToken string
}

type StorageConfig struct {
	S3 S3Config
}

type S3Config struct {
	BucketName string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
}

type WorkerConfig struct {
	Concurrency int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "porchlight"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Firebase: FirebaseConfig{
			CredentialsJSON: getEnv("FIREBASE_CONFIG_DATA", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "porchlight_session"),
			TTL:        getEnvAsDuration("SESSION_COOKIE_TTL", 14*24*time.Hour),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", true),
		},
		GoFormz: GoFormzConfig{
			BaseURL:  getEnv("GOFORMZ_BASE_URL", "https://api.goformz.com/v2"),
			APIToken: getEnv("GOFORMZ_API_TOKEN", ""),
		},
		Storage: StorageConfig{
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
