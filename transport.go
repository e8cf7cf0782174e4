package easyhttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// ResponseEnvelope 是传输层返回的原始响应，交给 Coerce 后即丢弃。
type ResponseEnvelope struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *ResponseEnvelope) success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport 是 HTTP 执行协作者。
// 只有连接级失败才返回 error；非 2xx 状态码由调用方分类。
type Transport interface {
	Execute(ctx context.Context, req *RequestDescriptor) (*ResponseEnvelope, error)
}

// TransportFunc 让普通函数满足 Transport 接口
type TransportFunc func(ctx context.Context, req *RequestDescriptor) (*ResponseEnvelope, error)

func (f TransportFunc) Execute(ctx context.Context, req *RequestDescriptor) (*ResponseEnvelope, error) {
	return f(ctx, req)
}

// --- RoundTripper 中间件 ---

// Middleware 是客户端侧的 RoundTripper 中间件
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc 让普通函数满足 http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain 组合多个中间件，第一个中间件在最外层
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// --- 默认实现 ---

// TransportConfig 配置默认的 net/http 传输层
type TransportConfig struct {
	// ConnectTimeout 限制建立连接 (含 DNS) 的时间
	ConnectTimeout time.Duration
	// ReadTimeout 限制写完请求后等待响应头的时间
	ReadTimeout time.Duration
	// WriteTimeout 与前两者一起构成整次调用的总时限，三者都设置时才生效
	WriteTimeout time.Duration
	// HTTP2 为 TLS 连接启用 HTTP/2
	HTTP2       bool
	Middlewares []Middleware
}

// HTTPTransport 基于 *http.Client 执行请求
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport 根据配置创建独立的 *http.Client，不共享 http.DefaultClient。
func NewHTTPTransport(cfg TransportConfig) (*HTTPTransport, error) {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("easyhttp: configure http2: %w", err)
		}
	}

	client := &http.Client{Transport: Chain(tr, cfg.Middlewares...)}
	if cfg.ConnectTimeout > 0 && cfg.ReadTimeout > 0 && cfg.WriteTimeout > 0 {
		client.Timeout = cfg.ConnectTimeout + cfg.WriteTimeout + cfg.ReadTimeout
	}
	return &HTTPTransport{client: client}, nil
}

// NewHTTPTransportFromClient 包装调用方已有的 *http.Client
func NewHTTPTransportFromClient(c *http.Client, mws ...Middleware) *HTTPTransport {
	if len(mws) > 0 {
		rt := c.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		cp := *c
		cp.Transport = Chain(rt, mws...)
		c = &cp
	}
	return &HTTPTransport{client: c}
}

// Client 返回底层的 *http.Client
func (t *HTTPTransport) Client() *http.Client { return t.client }

func (t *HTTPTransport) Execute(ctx context.Context, req *RequestDescriptor) (*ResponseEnvelope, error) {
	var body io.Reader
	if req.HasBody {
		// 空 body 也会带上 Content-Length: 0
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Verb), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// 直接写入 map，保留声明时的头名称大小写
	for k, v := range req.Header {
		httpReq.Header[k] = []string{v}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &ResponseEnvelope{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
