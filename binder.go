package easyhttp

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/gorilla/schema"
)

// SchemaEncoder 用于把 QueryObject 参数展开为查询串
// 字段名读取 form tag
var SchemaEncoder = func() *schema.Encoder {
	e := schema.NewEncoder()
	e.SetAliasTag("form")
	return e
}()

// 方法元数据 (Method Compilation)

// methodMeta 保存方法的静态分析结果，在 New 时编译一次，之后只读
type methodMeta struct {
	name    string
	verb    Verb
	path    string
	headers map[string]string
	params  []Param
	// bodyIdx 是 JSONBody 参数的下标，-1 代表不存在
	bodyIdx int
	hasForm bool
}

// compileMethod 校验方法声明并生成元数据。
// 所有声明错误都在这里发现，而不是等到第一次调用。
func compileMethod(m Method) (*methodMeta, error) {
	fail := func(param, format string, args ...any) error {
		return &BindingError{Method: m.Name, Param: param, Err: ErrInvalidMethod, Msg: fmt.Sprintf(format, args...)}
	}

	if m.Name == "" {
		return nil, fail("", "method name is required")
	}
	if !m.Verb.valid() {
		return nil, fail("", "exactly one of GET, POST, PUT, DELETE is required, got %q", m.Verb)
	}

	meta := &methodMeta{
		name:    m.Name,
		verb:    m.Verb,
		path:    m.Path,
		headers: ParseHeaderLines(m.Headers),
		params:  append([]Param(nil), m.Params...),
		bodyIdx: -1,
	}

	pathVars := make(map[string]int)
	for i, p := range m.Params {
		switch p.Role {
		case RolePathVar, RoleQuery, RoleHeader, RoleForm:
			if p.Name == "" {
				return nil, fail("", "param #%d (%s) needs a name", i, p.Role)
			}
		case RoleJSONBody, RoleQueryObject:
		default:
			return nil, fail(p.Name, "param #%d has unknown role %s", i, p.Role)
		}

		switch p.Role {
		case RolePathVar:
			pathVars[p.Name]++
		case RoleJSONBody:
			if meta.bodyIdx != -1 {
				return nil, fail("", "at most one JSON body param is allowed")
			}
			meta.bodyIdx = i
		case RoleForm:
			meta.hasForm = true
		}
	}

	if meta.bodyIdx != -1 && meta.hasForm {
		return nil, fail("", "JSON body and form params cannot be mixed")
	}

	// 每个占位符必须恰好对应一个 PathVar
	for _, name := range placeholderNames(m.Path) {
		switch pathVars[name] {
		case 1:
		case 0:
			return nil, &BindingError{Method: m.Name, Param: name, Err: ErrMissingPathVar, Msg: "path template placeholder has no path param"}
		default:
			return nil, fail(name, "path variable is bound more than once")
		}
	}

	return meta, nil
}

// 运行时绑定 (Argument Binding)

// bindings 是一次调用中按角色归类后的参数值
type bindings struct {
	pathVars map[string]string
	headers  map[string]string
	query    url.Values
	form     url.Values
	body     any
}

// bind 按声明顺序把实参归类。
// PathVar/Header 为 nil 时报错；Query/Form/QueryObject 为 nil 时直接忽略 (Required 不强制)。
func (m *methodMeta) bind(args []any) (*bindings, error) {
	if len(args) != len(m.params) {
		return nil, &BindingError{
			Method: m.name,
			Err:    ErrArgCount,
			Msg:    fmt.Sprintf("want %d, got %d", len(m.params), len(args)),
		}
	}

	b := &bindings{
		pathVars: make(map[string]string),
		headers:  make(map[string]string),
		query:    url.Values{},
		form:     url.Values{},
	}

	for i, p := range m.params {
		arg := args[i]
		absent := isNil(arg)

		switch p.Role {
		case RolePathVar:
			if absent {
				return nil, &BindingError{Method: m.name, Param: p.Name, Err: ErrNilArgument}
			}
			b.pathVars[p.Name] = stringify(arg)
		case RoleHeader:
			if absent {
				return nil, &BindingError{Method: m.name, Param: p.Name, Err: ErrNilArgument}
			}
			b.headers[p.Name] = stringify(arg)
		case RoleQuery:
			if !absent {
				addValues(b.query, p.Name, arg)
			}
		case RoleForm:
			if !absent {
				addValues(b.form, p.Name, arg)
			}
		case RoleQueryObject:
			if absent {
				continue
			}
			if err := encodeObject(arg, b.query); err != nil {
				return nil, &BindingError{Method: m.name, Param: fmt.Sprintf("#%d", i), Err: err}
			}
		case RoleJSONBody:
			if !absent {
				b.body = arg
			}
		}
	}
	return b, nil
}

// encodeObject 使用 SchemaEncoder 把结构体展开到 dst
func encodeObject(arg any, dst url.Values) error {
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("query object must be a struct, got %s", v.Kind())
	}
	return SchemaEncoder.Encode(v.Interface(), dst)
}

// addValues 追加一个查询/表单值；切片 (除 []byte) 会展开为多个同名值
func addValues(dst url.Values, name string, arg any) {
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if (v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8) || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			dst.Add(name, stringify(v.Index(i).Interface()))
		}
		return
	}
	dst.Add(name, stringify(arg))
}

// isNil 把 nil 接口以及 nil 指针、map、切片等都视为参数缺失
func isNil(arg any) bool {
	if arg == nil {
		return true
	}
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// stringify 返回参数的字符串形式，指针会先解引用
func stringify(arg any) string {
	switch x := arg.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return string(b)
		}
	case fmt.Stringer:
		return x.String()
	}

	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return ""
		}
		return stringify(v.Elem().Interface())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(arg)
}
