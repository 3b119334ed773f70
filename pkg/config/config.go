package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Data    DataConfig
	Index   IndexConfig
	LLM     LLMConfig
	Chat    ChatConfig
	Scraper ScraperConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

type DataConfig struct {
	JSONDir string
}

type IndexConfig struct {
	Path string
	TopK int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
	EmbeddingModel string
	EmbeddingDim   int
}

type ChatConfig struct {
	MaxInputChars      int
	MaxInputTokens     int
	MaxHistoryTurns    int
	MaxStoredAnswerLen int
	RateLimitRequests  int
	RateLimitWindowSec int
}

type ScraperConfig struct {
	BaseURL    string
	TimeoutSec int
	DelaySec   int
}

type MetricsConfig struct {
	ListenAddr string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sih-agent")

	viper.SetEnvPrefix("SIH_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings the process cannot run without. A missing
// API key is a startup failure, not a per-request one.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.apiKey is required (set SIH_AGENT_LLM_APIKEY)")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("data.jsonDir", "./data")

	viper.SetDefault("index.path", "./data/sih_index.db")
	viper.SetDefault("index.topK", 8)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 30)
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.embeddingDim", 1536)

	viper.SetDefault("chat.maxInputChars", 800)
	viper.SetDefault("chat.maxInputTokens", 150)
	viper.SetDefault("chat.maxHistoryTurns", 16)
	viper.SetDefault("chat.maxStoredAnswerLen", 250)
	viper.SetDefault("chat.rateLimitRequests", 15)
	viper.SetDefault("chat.rateLimitWindowSec", 60)

	viper.SetDefault("scraper.baseURL", "https://sih.gov.in")
	viper.SetDefault("scraper.timeoutSec", 15)
	viper.SetDefault("scraper.delaySec", 2)

	viper.SetDefault("metrics.listenAddr", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.outputPath", "stderr")
}
