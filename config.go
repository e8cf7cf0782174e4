package easyhttp

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是可以从 YAML 文件加载的客户端配置。
type Config struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	// Headers 的每一行格式为 "Name: Value"
	Headers        []string      `yaml:"headers"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gte=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gte=0"`
	// MaxRetry 只作用于 GET/DELETE
	MaxRetry        int              `yaml:"max_retry" validate:"gte=0,lte=10"`
	HTTP2           bool             `yaml:"http2"`
	RateLimit       *RateLimitConfig `yaml:"rate_limit"`
	RequestIDHeader string           `yaml:"request_id_header"`
	Envelope        bool             `yaml:"envelope"`
}

// RateLimitConfig 配置令牌桶限流
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" validate:"gt=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
}

// LoadConfig 读取并解析 YAML 配置文件。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析 YAML 配置并校验。
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 使用默认 Validator 校验配置字段。
func (c *Config) Validate() error {
	if err := Validator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
