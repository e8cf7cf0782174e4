package easyhttp

import (
	"context"
	"net/url"
	"strings"
)

const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// RequestDescriptor 是与传输层无关的请求描述，只在一次调用内使用。
type RequestDescriptor struct {
	// Method 是注册时的方法名，用于日志和指标
	Method string
	Verb   Verb
	// URL 是替换占位符并拼接查询串后的完整地址
	URL    string
	Header map[string]string
	Query  url.Values
	// HasBody 为 true 时即使 Body 为空也要发送请求体 (POST/PUT)
	Body    []byte
	HasBody bool
}

// buildRequest 把归类后的参数组装成 RequestDescriptor
func (c *Client) buildRequest(ctx context.Context, m *methodMeta, b *bindings) (*RequestDescriptor, error) {
	// 1. 解析路径模板
	path, err := ResolvePath(m.path, b.pathVars)
	if err != nil {
		if be, ok := err.(*BindingError); ok {
			be.Method = m.name
		}
		return nil, err
	}

	// 2. 合并请求头: 客户端默认 < 方法级 < 调用参数
	req := &RequestDescriptor{
		Method: m.name,
		Verb:   m.verb,
		URL:    joinURL(c.baseURL, path),
		Header: MergeHeaders(c.headers, m.headers, b.headers),
	}

	// 3. 按动词分支
	switch {
	case m.verb.hasQuery():
		req.Query = b.query
		if len(b.query) > 0 {
			sep := "?"
			if strings.Contains(req.URL, "?") {
				sep = "&"
			}
			req.URL += sep + b.query.Encode()
		}
	case m.verb.hasBody():
		req.HasBody = true
		contentType := ContentTypeJSON
		switch {
		case m.bodyIdx == -1 && m.hasForm:
			contentType = ContentTypeForm
			req.Body = []byte(b.form.Encode())
		case b.body != nil:
			if err := Validate(ctx, b.body, c.validator); err != nil {
				return nil, &BindingError{Method: m.name, Err: err}
			}
			data, err := c.codec.Marshal(b.body)
			if err != nil {
				return nil, &BindingError{Method: m.name, Msg: "encode json body", Err: err}
			}
			req.Body = data
		default:
			// 没有 body 参数时发送空串，而不是省略 body
			req.Body = []byte{}
		}
		setContentType(req.Header, contentType)
	}

	return req, nil
}

// setContentType 去掉任意大小写的 Content-Type 后写入 body 的类型
func setContentType(h map[string]string, contentType string) {
	for k := range h {
		if strings.EqualFold(k, "Content-Type") {
			delete(h, k)
		}
	}
	h["Content-Type"] = contentType
}
