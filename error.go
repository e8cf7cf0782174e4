package easyhttp

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// --- 1. 预定义错误 (Sentinel Errors) ---
// 绑定类错误都是调用方/声明方的编程错误，不会重试。

var (
	ErrNilArgument    = errors.New("argument must not be nil")
	ErrMissingPathVar = errors.New("no value provided for path variable")
	ErrArgCount       = errors.New("argument count does not match declared params")
	ErrUnknownMethod  = errors.New("method is not registered")
	ErrInvalidMethod  = errors.New("invalid method declaration")
	ErrInvalidTarget  = errors.New("target is not a valid declarative interface")
	ErrValidation     = errors.New("validation failed")
	// ErrRateLimited 表示限流器拒绝了请求，不会被重试
	ErrRateLimited    = errors.New("rate limit")
)

// ErrorCoder 定义了如何提取 HTTP 状态码。
type ErrorCoder interface {
	HTTPStatus() int
}

// --- 2. 错误类型 ---

// BindingError 表示方法声明或调用参数不满足绑定约定，在请求发出之前同步报告。
type BindingError struct {
	Method string
	Param  string
	Msg    string
	Err    error
}

func (e *BindingError) Error() string {
	s := "easyhttp: binding"
	if e.Method != "" {
		s += " " + e.Method
	}
	if e.Param != "" {
		s += fmt.Sprintf(" param %q", e.Param)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *BindingError) Unwrap() error { return e.Err }

// TransportError 表示非 2xx 状态码，或 StatusCode 为 0 时的连接级失败。
// Body 保留原始响应文本，便于排查。
type TransportError struct {
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("easyhttp: %s: transport: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("easyhttp: %s: HTTP %d %s, body: %s", e.Method, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) HTTPStatus() int { return e.StatusCode }

// DecodeError 表示响应体无法转换为声明的返回类型。
type DecodeError struct {
	Literal string
	Type    reflect.Type
	Err     error
}

func (e *DecodeError) Error() string {
	lit := e.Literal
	if len(lit) > 64 {
		lit = lit[:64] + "..."
	}
	return fmt.Sprintf("easyhttp: cannot convert %q to %v: %v", lit, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EnvelopeError 表示响应信封中的业务码不是 CodeOK。
type EnvelopeError struct {
	StatusCode int
	Code       string
	Message    string
	TraceID    string
}

func (e *EnvelopeError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("easyhttp: envelope code %s: %s (trace_id=%s)", e.Code, e.Message, e.TraceID)
	}
	return fmt.Sprintf("easyhttp: envelope code %s: %s", e.Code, e.Message)
}

func (e *EnvelopeError) HTTPStatus() int { return e.StatusCode }

// --- 3. 辅助函数 ---

// StatusCode 从错误链中提取 HTTP 状态码，没有则返回 0。
func StatusCode(err error) int {
	var coder ErrorCoder
	if errors.As(err, &coder) {
		return coder.HTTPStatus()
	}
	return 0
}

// IsBindingError 报告 err 是否为绑定错误。
func IsBindingError(err error) bool {
	var e *BindingError
	return errors.As(err, &e)
}

// IsTransportError 报告 err 是否为传输错误。
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsDecodeError 报告 err 是否为解码错误。
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}
