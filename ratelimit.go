package easyhttp

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Limiter 接口定义了客户端限流器的行为。
// Wait 阻塞直到允许发送请求，或在 ctx 结束时返回错误。
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewTokenBucket 创建一个令牌桶限流器，rps 为每秒请求数。
func NewTokenBucket(rps float64, burst int) Limiter {
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// closeBody 在 RoundTripper 提前返回错误时关闭请求体
func closeBody(r *http.Request) {
	if r.Body != nil {
		_ = r.Body.Close()
	}
}

// RateLimit 返回一个在发送前等待 limiter 的中间件。
func RateLimit(limiter Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				closeBody(r)
				return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
			return next.RoundTrip(r)
		})
	}
}
