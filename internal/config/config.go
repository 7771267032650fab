package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Admin     AdminConfig
	Data      DataConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AdminConfig is the shared-password admin check. There is deliberately no
// session or token mechanism behind it.
type AdminConfig struct {
	User     string
	Password string
}

type DataConfig struct {
	// Dir holds the document file, the stat-log partitions and (in disk
	// mode) the uploads directory.
	Dir          string
	File         string
	UploadDir    string
	StoreBackend string // "file" | "mongo"
	MediaBackend string // "disk" | "minio"
	MaxUploadMiB int64
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

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "10000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("ADMIN_USER", "管理员")
	viper.SetDefault("ADMIN_PASS", "adminpass")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DATA_FILE", "data.json")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("MEDIA_BACKEND", "disk")
	viper.SetDefault("MAX_UPLOAD_MIB", 300)
	viper.SetDefault("MONGODB_DATABASE", "bulletin")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Admin: AdminConfig{
			User:     viper.GetString("ADMIN_USER"),
			Password: viper.GetString("ADMIN_PASS"),
		},
		Data: DataConfig{
			Dir:          viper.GetString("DATA_DIR"),
			File:         viper.GetString("DATA_FILE"),
			UploadDir:    viper.GetString("UPLOAD_DIR"),
			StoreBackend: viper.GetString("STORE_BACKEND"),
			MediaBackend: viper.GetString("MEDIA_BACKEND"),
			MaxUploadMiB: viper.GetInt64("MAX_UPLOAD_MIB"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
