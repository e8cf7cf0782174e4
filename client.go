package easyhttp

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Client 是一个 Service 的可调用实现。
// New 之后所有字段只读，可以被多个 goroutine 并发使用。
type Client struct {
	baseURL         string
	headers         map[string]string
	methods         map[string]*methodMeta
	transport       Transport
	retry           RetryPolicy
	codec           Codec
	validator       *validator.Validate
	logger          zerolog.Logger
	metrics         *Metrics
	errorHook       func(ctx context.Context, err error)
	requestIDHeader string
	envelope        bool
}

// New 编译 Service 中的所有方法并创建客户端。
// 方法声明错误 (缺少动词、占位符没有对应 PathVar、多个 JSON body 等) 在这里一次性报告。
func New(svc Service, opts ...Option) (*Client, error) {
	// 应用配置 (默认值)
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	baseURL := svc.BaseURL
	if cfg.baseURL != "" {
		baseURL = cfg.baseURL
	}

	c := &Client{
		baseURL:         trimBaseURL(baseURL),
		headers:         MergeHeaders(ParseHeaderLines(svc.Headers), cfg.headers),
		methods:         make(map[string]*methodMeta, len(svc.Methods)),
		retry:           cfg.retry,
		codec:           cfg.codec,
		validator:       cfg.validator,
		logger:          cfg.logger,
		metrics:         cfg.metrics,
		errorHook:       cfg.errorHook,
		requestIDHeader: cfg.requestIDHeader,
		envelope:        cfg.envelope,
	}
	if c.codec == nil {
		c.codec = DefaultCodec
	}

	// 1. 编译方法表
	for _, m := range svc.Methods {
		meta, err := compileMethod(m)
		if err != nil {
			return nil, err
		}
		if _, dup := c.methods[m.Name]; dup {
			return nil, &BindingError{Method: m.Name, Err: ErrInvalidMethod, Msg: "method declared more than once"}
		}
		c.warnIgnoredParams(meta)
		c.methods[m.Name] = meta
	}

	// 2. 组装传输层
	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}
	c.transport = transport

	return c, nil
}

func buildTransport(cfg *config) (Transport, error) {
	if cfg.transport != nil {
		if cfg.limiter == nil {
			return cfg.transport, nil
		}
		inner, limiter := cfg.transport, cfg.limiter
		return TransportFunc(func(ctx context.Context, req *RequestDescriptor) (*ResponseEnvelope, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
			return inner.Execute(ctx, req)
		}), nil
	}

	mws := cfg.transportCfg.Middlewares
	if cfg.limiter != nil {
		mws = append([]Middleware{RateLimit(cfg.limiter)}, mws...)
	}
	if cfg.httpClient != nil {
		return NewHTTPTransportFromClient(cfg.httpClient, mws...), nil
	}

	tc := cfg.transportCfg
	tc.Middlewares = mws
	return NewHTTPTransport(tc)
}

// warnIgnoredParams 记录在当前动词下不会被发送的参数
func (c *Client) warnIgnoredParams(m *methodMeta) {
	for _, p := range m.params {
		ignored := (m.verb.hasBody() && (p.Role == RoleQuery || p.Role == RoleQueryObject)) ||
			(m.verb.hasQuery() && (p.Role == RoleForm || p.Role == RoleJSONBody))
		if ignored {
			c.logger.Warn().
				Str("method", m.name).
				Str("verb", string(m.verb)).
				Str("role", p.Role.String()).
				Str("param", p.Name).
				Msg("easyhttp: param is ignored for this verb")
		}
	}
}

// BaseURL 返回去掉末尾 "/" 之后的基础地址
func (c *Client) BaseURL() string { return c.baseURL }

// Methods 返回已注册的方法名 (按字母排序)
func (c *Client) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call 调用 name 对应的方法，并把响应转换为 T。
func Call[T any](ctx context.Context, c *Client, name string, args ...any) (T, error) {
	var res T
	if err := c.Invoke(ctx, name, &res, args...); err != nil {
		var zero T
		return zero, err
	}
	return res, nil
}
