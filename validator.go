package easyhttp

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Validator 是默认的验证器实例
var Validator = validator.New()

// SelfValidatable 是高性能验证接口。
// 如果请求体实现了此接口，将跳过反射验证。
type SelfValidatable interface {
	Validate(ctx context.Context) error
}

// Validate 在发送前验证请求体。
// 只有实现 SelfValidatable 的值，或结构体 (及其指针) 才会被验证，其余类型直接通过。
// 失败时返回包装了 ErrValidation 的错误。
func Validate(ctx context.Context, v any, validators ...*validator.Validate) error {
	// 1. Fast Path: 接口验证 (优先)
	if val, ok := v.(SelfValidatable); ok {
		if err := val.Validate(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil
	}

	// 2. 非结构体没有 tag 可验证
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	// 3. Slow Path: 反射验证
	validate := Validator
	if len(validators) > 0 && validators[0] != nil {
		validate = validators[0]
	}
	if err := validate.StructCtx(ctx, v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
