package easyhttp

import (
	"fmt"
	"strings"
)

// Verb 是方法声明的 HTTP 动词。
type Verb string

const (
	GET    Verb = "GET"
	POST   Verb = "POST"
	PUT    Verb = "PUT"
	DELETE Verb = "DELETE"
)

// hasQuery 报告该动词是否把 Query 参数拼到 URL 上 (GET/DELETE)。
func (v Verb) hasQuery() bool { return v == GET || v == DELETE }

// hasBody 报告该动词是否携带请求体 (POST/PUT)。
func (v Verb) hasBody() bool { return v == POST || v == PUT }

func (v Verb) valid() bool { return v.hasQuery() || v.hasBody() }

// Role 定义参数在 HTTP 请求中的角色。
type Role int

const (
	// RolePathVar 替换路径模板中的 {name} 占位符
	RolePathVar Role = iota + 1
	// RoleQuery 作为 name=value 追加到查询串 (GET/DELETE)
	RoleQuery
	// RoleHeader 作为请求头发送，覆盖客户端和方法级别的同名头
	RoleHeader
	// RoleJSONBody 经 Codec 编码后作为请求体发送 (POST/PUT)
	RoleJSONBody
	// RoleForm 作为 x-www-form-urlencoded 请求体字段发送 (POST/PUT)
	RoleForm
	// RoleQueryObject 把结构体按 form tag 展开为多个查询参数
	RoleQueryObject
)

func (r Role) String() string {
	switch r {
	case RolePathVar:
		return "path"
	case RoleQuery:
		return "query"
	case RoleHeader:
		return "header"
	case RoleJSONBody:
		return "json"
	case RoleForm:
		return "form"
	case RoleQueryObject:
		return "query_object"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Param 描述一个方法参数的绑定元数据。
// Required 仅对 Query/Form 有意义，目前只是声明，不做强制校验。
type Param struct {
	Role     Role
	Name     string
	Required bool
}

// PathVar 声明一个路径变量参数。
func PathVar(name string) Param { return Param{Role: RolePathVar, Name: name} }

// Query 声明一个查询参数。
func Query(name string) Param { return Param{Role: RoleQuery, Name: name} }

// RequiredQuery 声明一个标记为 required 的查询参数 (元数据，不强制)。
func RequiredQuery(name string) Param { return Param{Role: RoleQuery, Name: name, Required: true} }

// Header 声明一个请求头参数。
func Header(name string) Param { return Param{Role: RoleHeader, Name: name} }

// JSONBody 声明 JSON 请求体参数，每个方法至多一个。
func JSONBody() Param { return Param{Role: RoleJSONBody} }

// Form 声明一个表单字段参数。
func Form(name string) Param { return Param{Role: RoleForm, Name: name} }

// RequiredForm 声明一个标记为 required 的表单字段 (元数据，不强制)。
func RequiredForm(name string) Param { return Param{Role: RoleForm, Name: name, Required: true} }

// QueryObject 声明一个按 form tag 展开为查询参数的结构体参数。
func QueryObject() Param { return Param{Role: RoleQueryObject} }

// Method 是一个远程接口方法的静态描述。
type Method struct {
	// Name 是调用时使用的方法名，也是 Implement 匹配结构体字段的依据
	Name string
	Verb Verb
	// Path 是路径模板，例如 "/users/{id}"
	Path string
	// Headers 是方法级别的请求头，格式为 "Name: Value"
	Headers []string
	// Params 按调用参数的顺序排列
	Params []Param
}

// WithHeaders 返回追加了方法级请求头的副本。
func (m Method) WithHeaders(lines ...string) Method {
	h := make([]string, 0, len(m.Headers)+len(lines))
	h = append(h, m.Headers...)
	m.Headers = append(h, lines...)
	return m
}

func newMethod(verb Verb, name, path string, params []Param) Method {
	return Method{Name: name, Verb: verb, Path: path, Params: params}
}

// Get 声明一个 GET 方法。
func Get(name, path string, params ...Param) Method { return newMethod(GET, name, path, params) }

// Post 声明一个 POST 方法。
func Post(name, path string, params ...Param) Method { return newMethod(POST, name, path, params) }

// Put 声明一个 PUT 方法。
func Put(name, path string, params ...Param) Method { return newMethod(PUT, name, path, params) }

// Delete 声明一个 DELETE 方法。
func Delete(name, path string, params ...Param) Method { return newMethod(DELETE, name, path, params) }

// Service 是一组方法的声明式描述，相当于一个客户端分组。
type Service struct {
	// BaseURL 会去掉末尾的 "/"
	BaseURL string
	// Headers 是默认请求头，格式为 "Name: Value"
	Headers []string
	Methods []Method
}

func trimBaseURL(u string) string {
	return strings.TrimSuffix(u, "/")
}
