package easyhttp

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Implement 为 target 指向的结构体中的函数字段生成实现。
//
// 每个导出的函数字段按字段名 (或 `easyhttp:"Name"` tag) 匹配已注册的方法，签名必须是
//
//	func(ctx context.Context, <一个参数对应一个 Param>) (T, error)
//	func(ctx context.Context, <一个参数对应一个 Param>) error
//
// T 决定响应的转换方式。tag 为 "-" 的字段被跳过。
// 签名不匹配或找不到方法时返回包装了 ErrInvalidTarget 的 *BindingError，target 不会被部分修改。
func (c *Client) Implement(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &BindingError{Err: ErrInvalidTarget, Msg: fmt.Sprintf("want pointer to struct, got %T", target)}
	}

	sv := rv.Elem()
	st := sv.Type()

	fns := make(map[int]reflect.Value)
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}

		name := field.Tag.Get("easyhttp")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		m, ok := c.methods[name]
		if !ok {
			return &BindingError{Method: name, Err: ErrInvalidTarget, Msg: fmt.Sprintf("field %s.%s has no registered method", st.Name(), field.Name)}
		}
		if err := checkSignature(m, field.Type); err != nil {
			return &BindingError{Method: name, Err: ErrInvalidTarget, Msg: fmt.Sprintf("field %s.%s: %v", st.Name(), field.Name, err)}
		}
		fns[i] = c.makeFunc(m, field.Type)
	}

	if len(fns) == 0 {
		return &BindingError{Err: ErrInvalidTarget, Msg: fmt.Sprintf("%s has no func fields", st.Name())}
	}
	for i, fn := range fns {
		sv.Field(i).Set(fn)
	}
	return nil
}

func checkSignature(m *methodMeta, ft reflect.Type) error {
	if ft.IsVariadic() {
		return fmt.Errorf("variadic funcs are not supported")
	}
	if ft.NumIn() != len(m.params)+1 {
		return fmt.Errorf("want %d args (context + %d params), got %d", len(m.params)+1, len(m.params), ft.NumIn())
	}
	if ft.In(0) != contextType {
		return fmt.Errorf("first arg must be context.Context, got %v", ft.In(0))
	}
	switch ft.NumOut() {
	case 1, 2:
	default:
		return fmt.Errorf("want (T, error) or error results, got %d results", ft.NumOut())
	}
	if ft.Out(ft.NumOut()-1) != errorType {
		return fmt.Errorf("last result must be error, got %v", ft.Out(ft.NumOut()-1))
	}
	return nil
}

func (c *Client) makeFunc(m *methodMeta, ft reflect.Type) reflect.Value {
	withResult := ft.NumOut() == 2

	return reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		if ctx == nil {
			ctx = context.Background()
		}
		args := make([]any, len(in)-1)
		for i, v := range in[1:] {
			args[i] = v.Interface()
		}

		if !withResult {
			return []reflect.Value{errorValue(c.Invoke(ctx, m.name, nil, args...))}
		}

		out := reflect.New(ft.Out(0))
		if err := c.Invoke(ctx, m.name, out.Interface(), args...); err != nil {
			return []reflect.Value{reflect.Zero(ft.Out(0)), errorValue(err)}
		}
		return []reflect.Value{out.Elem(), reflect.Zero(errorType)}
	})
}

func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errorType)
	}
	return reflect.ValueOf(&err).Elem()
}
