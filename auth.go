package easyhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoCredentials 是一个特定的信号错误。
// 当凭证来源返回此错误时，AuthChain 会跳过它并尝试下一个来源。
var ErrNoCredentials = errors.New("no credentials available")

// AuthStrategy 在请求发出前为其附加凭证。
// 返回 ErrNoCredentials 表示该策略不适用，其它错误会终止请求。
type AuthStrategy func(ctx context.Context, r *http.Request) error

// Auth 返回一个在每次请求前执行 strategy 的中间件。
// 中间件不会修改调用方的请求，而是在克隆上写入凭证。
func Auth(strategy AuthStrategy) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			// 1. 克隆请求，RoundTripper 不应修改入参
			r = r.Clone(r.Context())

			// 2. 执行策略；没有可用凭证时按匿名请求发送
			if err := strategy(r.Context(), r); err != nil && !errors.Is(err, ErrNoCredentials) {
				closeBody(r)
				return nil, fmt.Errorf("auth: %w", err)
			}

			return next.RoundTrip(r)
		})
	}
}

// AuthChain 职责链模式：按顺序尝试多种凭证来源。
// 1. 如果策略成功 -> 立即返回。
// 2. 如果策略返回 ErrNoCredentials -> 继续尝试下一个。
// 3. 如果策略返回其他错误 (如刷新 token 失败) -> 立即终止。
// 4. 如果所有策略都未命中 -> 返回 ErrNoCredentials。
func AuthChain(strategies ...AuthStrategy) AuthStrategy {
	return func(ctx context.Context, r *http.Request) error {
		for _, strategy := range strategies {
			err := strategy(ctx, r)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrNoCredentials) {
				return err
			}
		}
		return ErrNoCredentials
	}
}

// ---------------------------------------------------------------------------
// 常用策略原子 (Strategy Primitives)
// ---------------------------------------------------------------------------

// TokenSource 返回当前可用的 token；返回空串等同于 ErrNoCredentials。
type TokenSource func(ctx context.Context) (string, error)

// StaticToken 返回固定 token 的 TokenSource
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// WithScheme 创建一个写入 "Authorization: <scheme> <token>" 的策略。
// scheme 例如 "Bearer", "DPoP"。已有 Authorization 头时不覆盖。
func WithScheme(scheme string, source TokenSource) AuthStrategy {
	return func(ctx context.Context, r *http.Request) error {
		if r.Header.Get("Authorization") != "" {
			return nil
		}
		token, err := source(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNoCredentials
		}
		r.Header.Set("Authorization", scheme+" "+token)
		return nil
	}
}

// Bearer 是 WithScheme("Bearer", source) 的简写
func Bearer(source TokenSource) AuthStrategy {
	return WithScheme("Bearer", source)
}

// Basic 创建一个写入 HTTP Basic 认证的策略
func Basic(username, password string) AuthStrategy {
	return func(_ context.Context, r *http.Request) error {
		if username == "" {
			return ErrNoCredentials
		}
		if r.Header.Get("Authorization") == "" {
			r.SetBasicAuth(username, password)
		}
		return nil
	}
}

// ToQuery 创建一个把凭证放入 URL 查询参数的策略
func ToQuery(param string, source TokenSource) AuthStrategy {
	return func(ctx context.Context, r *http.Request) error {
		token, err := source(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNoCredentials
		}
		q := r.URL.Query()
		q.Set(param, token)
		r.URL.RawQuery = q.Encode()
		return nil
	}
}

// ToCookie 创建一个以 Cookie 形式附加凭证的策略
func ToCookie(name string, source TokenSource) AuthStrategy {
	return func(ctx context.Context, r *http.Request) error {
		token, err := source(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNoCredentials
		}
		r.AddCookie(&http.Cookie{Name: name, Value: token})
		return nil
	}
}

// WithAuth 为默认传输层添加认证中间件
func WithAuth(strategy AuthStrategy) Option {
	return WithMiddleware(Auth(strategy))
}
