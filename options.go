package easyhttp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type config struct {
	baseURL         string
	headers         map[string]string
	transport       Transport
	httpClient      *http.Client
	transportCfg    TransportConfig
	limiter         Limiter
	retry           RetryPolicy
	codec           Codec
	validator       *validator.Validate
	logger          zerolog.Logger
	metrics         *Metrics
	errorHook       func(ctx context.Context, err error)
	requestIDHeader string
	envelope        bool
}

func defaultConfig() *config {
	return &config{
		headers:   make(map[string]string),
		codec:     DefaultCodec,
		validator: Validator,
		logger:    zerolog.Nop(),
	}
}

type Option func(*config)

// WithBaseURL 覆盖 Service 声明的 BaseURL
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithHeader 添加一个客户端默认请求头，覆盖 Service 中的同名头
func WithHeader(name, value string) Option {
	return func(c *config) {
		c.headers[name] = value
	}
}

// WithHeaders 批量添加客户端默认请求头
func WithHeaders(h map[string]string) Option {
	return func(c *config) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithTransport 替换传输协作者。设置后超时、HTTP2 与中间件选项不再生效。
func WithTransport(t Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}

// WithHTTPClient 使用调用方提供的 *http.Client 作为传输句柄
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithTimeouts 设置默认传输层的连接、读、写超时
func WithTimeouts(connect, read, write time.Duration) Option {
	return func(c *config) {
		c.transportCfg.ConnectTimeout = connect
		c.transportCfg.ReadTimeout = read
		c.transportCfg.WriteTimeout = write
	}
}

// WithHTTP2 为默认传输层启用 HTTP/2
func WithHTTP2() Option {
	return func(c *config) {
		c.transportCfg.HTTP2 = true
	}
}

// WithMiddleware 在默认传输层或 WithHTTPClient 提供的客户端外包裹 RoundTripper 中间件
func WithMiddleware(mws ...Middleware) Option {
	return func(c *config) {
		c.transportCfg.Middlewares = append(c.transportCfg.Middlewares, mws...)
	}
}

// WithLimiter 设置客户端限流器
func WithLimiter(l Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// WithRateLimit 使用令牌桶限制每秒请求数
func WithRateLimit(rps float64, burst int) Option {
	return WithLimiter(NewTokenBucket(rps, burst))
}

// WithRetry 为 GET/DELETE 开启最多 maxRetry 次的指数退避重试
func WithRetry(maxRetry int) Option {
	return func(c *config) {
		c.retry = DefaultRetryPolicy(maxRetry)
	}
}

// WithRetryPolicy 设置自定义的重试策略
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *config) {
		c.retry = p
	}
}

// WithCodec 替换结构化编解码器
func WithCodec(codec Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// WithValidator 设置自定义的 Validator 实例
func WithValidator(v *validator.Validate) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithLogger 设置日志记录器，默认不输出
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics 设置 prometheus 指标
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithErrorHook 设置错误钩子，每次失败的调用触发一次
func WithErrorHook(hook func(ctx context.Context, err error)) Option {
	return func(c *config) {
		c.errorHook = hook
	}
}

// WithRequestIDHeader 在每个请求上写入调用 ID (xid)，已有同名头时不覆盖
func WithRequestIDHeader(name string) Option {
	return func(c *config) {
		c.requestIDHeader = name
	}
}

// WithEnvelope 指示响应使用 {code, message, data} 信封包裹
func WithEnvelope() Option {
	return func(c *config) {
		c.envelope = true
	}
}

// WithConfig 应用一份文件配置。
// 非空的 BaseURL 覆盖 Service 声明；请求头叠加在 Service 默认头之上。
func WithConfig(cfg Config) Option {
	return func(c *config) {
		if cfg.BaseURL != "" {
			c.baseURL = cfg.BaseURL
		}
		for k, v := range ParseHeaderLines(cfg.Headers) {
			c.headers[k] = v
		}
		if cfg.ConnectTimeout > 0 {
			c.transportCfg.ConnectTimeout = cfg.ConnectTimeout
		}
		if cfg.ReadTimeout > 0 {
			c.transportCfg.ReadTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout > 0 {
			c.transportCfg.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.HTTP2 {
			c.transportCfg.HTTP2 = true
		}
		if cfg.MaxRetry > 0 {
			c.retry = DefaultRetryPolicy(cfg.MaxRetry)
		}
		if cfg.RateLimit != nil {
			c.limiter = NewTokenBucket(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
		if cfg.RequestIDHeader != "" {
			c.requestIDHeader = cfg.RequestIDHeader
		}
		if cfg.Envelope {
			c.envelope = true
		}
	}
}
