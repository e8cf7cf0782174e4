package easyhttp

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// CodeOK 是信封中表示成功的业务码
const CodeOK = "OK"

var (
	envelopeType = reflect.TypeOf(Response[json.RawMessage]{})
	stringType   = reflect.TypeOf("")
)

// Response 是 oy3o/httpx 服务端使用的统一响应信封。
// 开启 WithEnvelope 后，客户端先解开信封，再对 Data 做类型转换。
type Response[T any] struct {
	// Code 是业务错误码 (字符串)，例如 "OK", "INVALID_PARAM"。
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// unwrapEnvelope 返回信封中 data 字段的原始内容。
// data 为 JSON 字符串时去掉引号，使标量转换拿到的是字面量本身；null 视为空 body。
func unwrapEnvelope(status int, raw []byte, codec Codec) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}

	var env Response[json.RawMessage]
	if err := codec.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Literal: string(raw), Type: envelopeType, Err: err}
	}
	if env.Code != CodeOK {
		return nil, &EnvelopeError{StatusCode: status, Code: env.Code, Message: env.Message, TraceID: env.TraceID}
	}

	data := bytes.TrimSpace(env.Data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil, nil
	case data[0] == '"':
		var s string
		if err := codec.Unmarshal(data, &s); err != nil {
			return nil, &DecodeError{Literal: string(data), Type: stringType, Err: err}
		}
		return []byte(s), nil
	}
	return data, nil
}
