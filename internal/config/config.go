package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	Migrate bool   `mapstructure:"migrate"`
}

// AuthConfig describes how bearer tokens issued by the external identity provider are verified.
// JWKSURL takes precedence over Secret.
type AuthConfig struct {
	JWKSURL  string `mapstructure:"jwksURL"`
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "minio" or "s3"
	Bucket    string `mapstructure:"bucket"`
	PublicURL string `mapstructure:"publicURL"`

	MinioEndpoint  string `mapstructure:"minioEndpoint"`
	MinioAccessKey string `mapstructure:"minioAccessKey"`
	MinioSecretKey string `mapstructure:"minioSecretKey"`
	MinioUseSSL    bool   `mapstructure:"minioUseSSL"`

	S3Region          string `mapstructure:"s3Region"`
	S3AccessKeyID     string `mapstructure:"s3AccessKeyID"`
	S3SecretAccessKey string `mapstructure:"s3SecretAccessKey"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

type StatsConfig struct {
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Stats    StatsConfig    `mapstructure:"stats"`
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"database.url":              "DATABASE_URL",
	"database.migrate":          "DATABASE_MIGRATE",
	"auth.jwksURL":              "JWKS_URL",
	"auth.secret":               "JWT_SECRET",
	"auth.issuer":               "JWT_ISSUER",
	"auth.audience":             "JWT_AUDIENCE",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"storage.driver":            "STORAGE_DRIVER",
	"storage.bucket":            "STORAGE_BUCKET",
	"storage.publicURL":         "STORAGE_PUBLIC_URL",
	"storage.minioEndpoint":     "MINIO_ENDPOINT",
	"storage.minioAccessKey":    "MINIO_ACCESS_KEY",
	"storage.minioSecretKey":    "MINIO_SECRET_KEY",
	"storage.minioUseSSL":       "MINIO_USE_SSL",
	"storage.s3Region":          "S3_REGION",
	"storage.s3AccessKeyID":     "S3_ACCESS_KEY_ID",
	"storage.s3SecretAccessKey": "S3_SECRET_ACCESS_KEY",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
	"stats.cacheTTL":            "STATS_CACHE_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.bucket", "fleetrent")
	v.SetDefault("storage.minioEndpoint", "localhost:9000")
	v.SetDefault("storage.minioAccessKey", "minioadmin")
	v.SetDefault("storage.minioSecretKey", "minioadmin")
	v.SetDefault("storage.minioUseSSL", false)
	v.SetDefault("storage.s3Region", "us-east-1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("stats.cacheTTL", 2*time.Minute)
}

// Load reads config.yaml from path when present and overlays environment variables.
// A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}
	switch c.Storage.Driver {
	case "minio", "s3":
	default:
		return errors.New("storage driver must be minio or s3")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	return nil
}
