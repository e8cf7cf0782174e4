package easyhttp

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
)

// Invoke 调用 name 对应的方法，把响应转换后写入 out。
// out 为 nil 时丢弃响应体；否则必须是非 nil 指针。
// 流程：绑定参数 -> 解析 URL -> 合并请求头 -> 构建请求 -> 传输 -> 转换结果。
func (c *Client) Invoke(ctx context.Context, name string, out any, args ...any) error {
	m, ok := c.methods[name]
	if !ok {
		return c.fail(ctx, &BindingError{Method: name, Err: ErrUnknownMethod})
	}

	// 1. 检查目标、绑定与构建，失败时不会发出任何请求
	if out != nil && !validTarget(out) {
		return c.fail(ctx, &BindingError{Method: name, Err: ErrInvalidTarget, Msg: errTargetMsg})
	}
	req, err := c.prepare(ctx, m, args)
	if err != nil {
		return c.fail(ctx, err)
	}

	callID := xid.New().String()
	if c.requestIDHeader != "" {
		if _, exists := req.Header[c.requestIDHeader]; !exists {
			req.Header[c.requestIDHeader] = callID
		}
	}

	log := c.logger.With().Str("call_id", callID).Str("method", m.name).Logger()
	log.Debug().Str("verb", string(req.Verb)).Str("url", req.URL).Msg("easyhttp: dispatch")

	start := time.Now()
	status := 0
	defer func() {
		c.metrics.observe(m.name, m.verb, status, time.Since(start))
	}()

	// 2. 交给传输层
	resp, err := c.execute(ctx, req, func(err error, wait time.Duration) {
		log.Debug().Int("status", StatusCode(err)).Dur("backoff", wait).Msg("easyhttp: retry")
	})
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		ev := log.Warn().Int("status", status)
		// 非 2xx 的错误信息包含响应体，只记录状态码
		var te *TransportError
		if !errors.As(err, &te) || te.StatusCode == 0 {
			ev = ev.Err(err)
		}
		ev.Msg("easyhttp: request failed")
		return c.fail(ctx, err)
	}
	log.Debug().Int("status", status).Dur("duration", time.Since(start)).Msg("easyhttp: response")

	// 3. 转换结果
	if err := c.decode(resp, out); err != nil {
		ev := log.Warn()
		var de *DecodeError
		if errors.As(err, &de) {
			ev = ev.Stringer("type", de.Type)
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("easyhttp: decode failed")
		return c.fail(ctx, err)
	}
	return nil
}

// Request 只构建请求描述而不发送，便于调试声明是否正确。
func (c *Client) Request(ctx context.Context, name string, args ...any) (*RequestDescriptor, error) {
	m, ok := c.methods[name]
	if !ok {
		return nil, &BindingError{Method: name, Err: ErrUnknownMethod}
	}
	return c.prepare(ctx, m, args)
}

func (c *Client) prepare(ctx context.Context, m *methodMeta, args []any) (*RequestDescriptor, error) {
	b, err := m.bind(args)
	if err != nil {
		return nil, err
	}
	return c.buildRequest(ctx, m, b)
}

// execute 执行请求并把非 2xx 状态码归类为 TransportError
func (c *Client) execute(ctx context.Context, req *RequestDescriptor, notify func(error, time.Duration)) (*ResponseEnvelope, error) {
	resp, err := c.retry.run(ctx, req.Verb, func() (*ResponseEnvelope, error) {
		resp, err := c.transport.Execute(ctx, req)
		if err != nil {
			return nil, &TransportError{Method: req.Method, Err: err}
		}
		if !resp.success() {
			return resp, &TransportError{Method: req.Method, StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}
		return resp, nil
	}, notify)
	// 退避等待期间 ctx 结束时返回的是 ctx 的错误
	if err != nil && !IsTransportError(err) {
		return nil, &TransportError{Method: req.Method, Err: err}
	}
	return resp, err
}

func (c *Client) decode(resp *ResponseEnvelope, out any) error {
	if out == nil {
		return nil
	}
	raw := resp.Body
	if c.envelope {
		var err error
		if raw, err = unwrapEnvelope(resp.StatusCode, raw, c.codec); err != nil {
			return err
		}
	}
	return Coerce(raw, out, c.codec)
}

// fail 触发错误钩子后原样返回 err
func (c *Client) fail(ctx context.Context, err error) error {
	if c.errorHook != nil {
		c.errorHook(ctx, err)
	}
	return err
}
