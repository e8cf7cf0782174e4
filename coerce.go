package easyhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// coerceKind 是对目标类型的静态分类结果
type coerceKind int

const (
	kindCodec coerceKind = iota // 交给 Codec 做结构化解码
	kindString
	kindBytes
	kindBool
	kindInt
	kindUint
	kindFloat
	kindPointer // 指向标量的指针，分配后递归
)

var errNotBool = errors.New("not a boolean literal")

var jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// kindCache 缓存 reflect.Type -> coerceKind，避免每次响应都重新判断
var kindCache = xsync.NewMap[reflect.Type, coerceKind]()

// kindOf 获取或计算类型分类 (线程安全)
func kindOf(t reflect.Type) coerceKind {
	if k, ok := kindCache.Load(t); ok {
		return k
	}
	k, _ := kindCache.LoadOrStore(t, classify(t))
	return k
}

func classify(t reflect.Type) coerceKind {
	// 自定义了 JSON 解码的类型始终走 Codec，即使底层是标量
	if reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
		return kindCodec
	}

	switch t.Kind() {
	case reflect.String:
		return kindString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return kindBytes
		}
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.Ptr:
		if classify(t.Elem()) != kindCodec {
			return kindPointer
		}
	}
	return kindCodec
}

// Coerce 把原始响应体转换为 dst 指向的类型。
// dst 必须是非 nil 指针。
// 转换顺序：空 body -> 零值；字符串 -> 原文；布尔/数值 -> 直接解析字面量；其余 -> Codec。
func Coerce(raw []byte, dst any, codec Codec) error {
	if !validTarget(dst) {
		return &BindingError{Err: ErrInvalidTarget, Msg: errTargetMsg}
	}
	rv := reflect.ValueOf(dst)
	if codec == nil {
		codec = DefaultCodec
	}
	return coerceInto(raw, rv.Elem(), codec)
}

const errTargetMsg = "decode target must be a non-nil pointer"

// validTarget 报告 dst 是否为非 nil 指针
func validTarget(dst any) bool {
	rv := reflect.ValueOf(dst)
	return rv.Kind() == reflect.Ptr && !rv.IsNil()
}

func coerceInto(raw []byte, v reflect.Value, codec Codec) error {
	// 1. 空 body 直接返回零值，不调用 Codec
	if len(raw) == 0 {
		v.SetZero()
		return nil
	}

	t := v.Type()
	lit := string(raw)

	switch kindOf(t) {
	case kindString:
		v.SetString(lit)
	case kindBytes:
		v.SetBytes(bytes.Clone(raw))
	case kindBool:
		switch {
		case strings.EqualFold(lit, "true"):
			v.SetBool(true)
		case strings.EqualFold(lit, "false"):
			v.SetBool(false)
		default:
			return &DecodeError{Literal: lit, Type: t, Err: errNotBool}
		}
	case kindInt:
		n, err := strconv.ParseInt(lit, 10, t.Bits())
		if err != nil {
			return &DecodeError{Literal: lit, Type: t, Err: err}
		}
		v.SetInt(n)
	case kindUint:
		n, err := strconv.ParseUint(lit, 10, t.Bits())
		if err != nil {
			return &DecodeError{Literal: lit, Type: t, Err: err}
		}
		v.SetUint(n)
	case kindFloat:
		f, err := strconv.ParseFloat(lit, t.Bits())
		if err != nil {
			return &DecodeError{Literal: lit, Type: t, Err: err}
		}
		v.SetFloat(f)
	case kindPointer:
		p := reflect.New(t.Elem())
		if err := coerceInto(raw, p.Elem(), codec); err != nil {
			return err
		}
		v.Set(p)
	default:
		p := reflect.New(t)
		if err := codec.Unmarshal(raw, p.Interface()); err != nil {
			return &DecodeError{Literal: lit, Type: t, Err: err}
		}
		v.Set(p.Elem())
	}
	return nil
}
