package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const devJWTSecret = "supersecretjwtkey"

// ErrMissingJWTSecret is returned by Validate when production runs on the
// development signing key.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET must be set in production")

// Config is the process configuration, read from the environment.
type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDB                 string
	PostgresConnStr         string
	JWTSecret               string
	FirebaseCredentialsPath string
	UploadDir               string
	S3Bucket                string
	S3Region                string
	S3Endpoint              string
	PublicBaseURL           string
	LogLevel                string
	LogPretty               bool
	RequestTimeout          time.Duration
}

// Load reads .env when present and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDB:                 getEnv("MONGO_DB", "linkup"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", devJWTSecret),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:              getEnv("S3_ENDPOINT", ""),
		PublicBaseURL:           getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPretty:               getBool("LOG_PRETTY", false),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings that are unsafe for the current environment.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
