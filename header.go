package easyhttp

import "strings"

// ParseHeaderLines 把 "Name: Value" 形式的行解析为 map。
// 只按第一个冒号切分，名称和值两侧空白会被去掉；没有冒号或名称为空的行被忽略。
func ParseHeaderLines(lines []string) map[string]string {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}

// MergeHeaders 按顺序合并多层请求头，后面的层覆盖前面的同名头 (大小写敏感)。
// 它总是返回新的 map，不会修改任何输入层。
func MergeHeaders(layers ...map[string]string) map[string]string {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	merged := make(map[string]string, n)
	for _, l := range layers {
		for k, v := range l {
			merged[k] = v
		}
	}
	return merged
}
