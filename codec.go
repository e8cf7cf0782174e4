package easyhttp

import "github.com/bytedance/sonic"

// Codec 是结构化载荷的编解码协作者。
// Unmarshal 必须忽略未知字段，但字段类型不匹配时要返回错误。
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// SonicCodec 使用 sonic 进行 JSON 编解码。
type SonicCodec struct {
	API sonic.API
}

// DefaultCodec 基于 sonic.ConfigDefault，默认不拒绝未知字段。
var DefaultCodec Codec = &SonicCodec{API: sonic.ConfigDefault}

func (c *SonicCodec) api() sonic.API {
	if c.API == nil {
		return sonic.ConfigDefault
	}
	return c.API
}

func (c *SonicCodec) Marshal(v any) ([]byte, error) {
	return c.api().Marshal(v)
}

func (c *SonicCodec) Unmarshal(data []byte, v any) error {
	return c.api().Unmarshal(data, v)
}
