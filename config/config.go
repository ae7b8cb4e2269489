package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string           `mapstructure:"port"`
	AIEndpoint    string           `mapstructure:"ai_endpoint"`
	Model         string           `mapstructure:"model"`
	OpenAIAPIKey  string           `mapstructure:"OPENAI_API_KEY"`
	GoogleAPIKey  string           `mapstructure:"GOOGLE_API_KEY"`
	MongoURI      string           `mapstructure:"MONGODB_URI"`
	MongoDatabase string           `mapstructure:"mongo_database"`
	UploadDir     string           `mapstructure:"upload_dir"`
	VectorDir     string           `mapstructure:"vector_dir"`
	Embedding     EmbeddingConfig  `mapstructure:"embedding"`
	Processing    ProcessingConfig `mapstructure:"processing"`
}

type EmbeddingConfig struct {
	Provider       string `mapstructure:"provider"` // "openai" or "gemini"
	Model          string `mapstructure:"model"`
	RequestDelayMs int    `mapstructure:"request_delay_ms"`
}

type ProcessingConfig struct {
	Workers          int `mapstructure:"workers"`
	QueueSize        int `mapstructure:"queue_size"`
	MaxRetries       int `mapstructure:"max_retries"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	v.SetDefault("port", "3001")
	v.SetDefault("mongo_database", "pdfchat")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("vector_dir", "vectors")
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.request_delay_ms", 200)
	v.SetDefault("processing.workers", 2)
	v.SetDefault("processing.queue_size", 16)
	v.SetDefault("processing.max_retries", 3)
	v.SetDefault("processing.retry_base_delay_ms", 2000)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GOOGLE_API_KEY")
	v.BindEnv("MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
