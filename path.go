package easyhttp

import (
	"regexp"
	"strings"
)

// placeholderPattern 非贪婪匹配不含 "/" 的 {name}
var placeholderPattern = regexp.MustCompile(`\{([^/]+?)\}`)

// placeholderNames 返回模板中出现的占位符名称 (按出现顺序，可能重复)。
func placeholderNames(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// ResolvePath 用 vars 中的值替换模板里的 {name} 占位符。
// 从左到右单次扫描，不支持嵌套；值原样插入，不做任何转义。
// 如果某个占位符在 vars 中不存在，返回包装了 ErrMissingPathVar 的 *BindingError。
func ResolvePath(template string, vars map[string]string) (string, error) {
	locs := placeholderPattern.FindAllStringSubmatchIndex(template, -1)
	if len(locs) == 0 {
		return template, nil
	}

	var sb strings.Builder
	sb.Grow(len(template))
	last := 0
	for _, loc := range locs {
		name := template[loc[2]:loc[3]]
		value, ok := vars[name]
		if !ok {
			return "", &BindingError{Param: name, Err: ErrMissingPathVar}
		}
		sb.WriteString(template[last:loc[0]])
		sb.WriteString(value)
		last = loc[1]
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}

// joinURL 拼接 baseURL 与路径，路径不以 "/" 开头时补一个。
func joinURL(baseURL, path string) string {
	if strings.HasPrefix(path, "/") {
		return baseURL + path
	}
	return baseURL + "/" + path
}
