package easyhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy 定义有限次数的重试。
// 只对幂等动词 GET/DELETE 的传输级失败生效，绑定错误和解码错误永远不会重试。
type RetryPolicy struct {
	// MaxRetry 是首次请求之外的最大重试次数，0 表示关闭
	MaxRetry        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy 返回指数退避 (100ms 起，上限 2s) 的重试策略
func DefaultRetryPolicy(maxRetry int) RetryPolicy {
	return RetryPolicy{
		MaxRetry:        maxRetry,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

func (p RetryPolicy) appliesTo(v Verb) bool {
	return p.MaxRetry > 0 && v.hasQuery()
}

// retryable 判断错误是否值得重试：连接失败，或 502/503/504
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRateLimited) {
		return false
	}
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	switch te.StatusCode {
	case 0, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// run 在策略允许时带退避地重复执行 fn
func (p RetryPolicy) run(ctx context.Context, verb Verb, fn func() (*ResponseEnvelope, error), notify func(error, time.Duration)) (*ResponseEnvelope, error) {
	if !p.appliesTo(verb) {
		return fn()
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxRetry + 1)),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}

	resp, err := backoff.Retry(ctx, func() (*ResponseEnvelope, error) {
		resp, err := fn()
		if err != nil && !retryable(err) {
			return resp, backoff.Permanent(err)
		}
		return resp, err
	}, opts...)

	// 最后一次尝试的永久错误可能仍被包裹
	var pe *backoff.PermanentError
	if errors.As(err, &pe) {
		err = pe.Unwrap()
	}
	return resp, err
}
