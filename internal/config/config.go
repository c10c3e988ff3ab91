package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

// OpenAIConfig AI 网关配置，BaseURL 留空时用官方地址
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	TextModel   string  `mapstructure:"text_model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	ImageSize   string  `mapstructure:"image_size"`
}

// RelayConfig 应答窗口要卡在微信服务器 3 秒超时之内
type RelayConfig struct {
	ReplyWindowMS int `mapstructure:"reply_window_ms"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func (c RelayConfig) ReplyWindow() time.Duration {
	return time.Duration(c.ReplyWindowMS) * time.Millisecond
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	// 微信云托管注入的环境变量沿用原有命名
	viper.BindEnv("database.user", "MYSQL_USERNAME")
	viper.BindEnv("database.password", "MYSQL_PASSWORD")
	viper.BindEnv("database.dbname", "MYSQL_DATABASE")

	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	viper.SetDefault("server.port", "80")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("database.parsetime", true)
	viper.SetDefault("openai.text_model", "text-davinci-003")
	viper.SetDefault("openai.max_tokens", 1024)
	viper.SetDefault("openai.temperature", 0.1)
	viper.SetDefault("openai.image_size", "1024x1024")
	viper.SetDefault("relay.reply_window_ms", 2800)
	viper.SetDefault("rate_limit.max_requests", 600)
	viper.SetDefault("rate_limit.window_minutes", 1)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// MYSQL_ADDRESS 形如 host:port，拆开覆盖配置文件
	if address := os.Getenv("MYSQL_ADDRESS"); address != "" {
		host, port, ok := strings.Cut(address, ":")
		cfg.Database.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Database.Port = p
			}
		}
	}

	return &cfg, nil
}
