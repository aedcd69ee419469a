package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. It is loaded once at
// process start and never mutated afterwards.
type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Watcher    WatcherConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GenerationConfig struct {
	// DefaultNumQuestions is used by POST /generate_mcq when the request
	// omits num_questions.
	DefaultNumQuestions int
	// UploadNumQuestions is the fixed count used by the transcript
	// ingestion paths (upload, webhook, watcher).
	UploadNumQuestions int
}

type DatabaseConfig struct {
	// Path is the SQLite database file. Created on first use.
	Path string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type WatcherConfig struct {
	Enabled bool
	Dir     string
}

type LoggerConfig struct {
	Level string
	Env   string
}

// Enabled reports whether the Redis cache should be wired in.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("generation.default_num_questions", 3)
	viper.SetDefault("generation.upload_num_questions", 5)
	viper.SetDefault("database.path", "meetquiz.db")
	viper.SetDefault("redis.ttl", 300)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional; env vars and defaults carry a
		// minimal deployment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey: viper.GetString("gemini.api_key"),
			Model:  viper.GetString("gemini.model"),
		},
		Generation: GenerationConfig{
			DefaultNumQuestions: viper.GetInt("generation.default_num_questions"),
			UploadNumQuestions:  viper.GetInt("generation.upload_num_questions"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			TTL:      viper.GetDuration("redis.ttl") * time.Second,
		},
		Watcher: WatcherConfig{
			Enabled: viper.GetBool("watcher.enabled"),
			Dir:     viper.GetString("watcher.dir"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment variable overrides for deployments without a config file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		config.Database.Path = path
	}

	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is required (set GEMINI_API_KEY)")
	}

	return config, nil
}
