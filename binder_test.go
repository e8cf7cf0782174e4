package easyhttp

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMethod_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		target error
	}{
		{"NoName", Get("", "/a"), ErrInvalidMethod},
		{"NoVerb", Method{Name: "A", Path: "/a"}, ErrInvalidMethod},
		{"UnknownVerb", Method{Name: "A", Verb: "PATCH", Path: "/a"}, ErrInvalidMethod},
		{"TwoBodies", Post("A", "/a", JSONBody(), JSONBody()), ErrInvalidMethod},
		{"BodyAndForm", Post("A", "/a", JSONBody(), Form("x")), ErrInvalidMethod},
		{"UnnamedQuery", Get("A", "/a", Query("")), ErrInvalidMethod},
		{"UnknownRole", Get("A", "/a", Param{Role: Role(99), Name: "x"}), ErrInvalidMethod},
		{"UnboundPlaceholder", Get("A", "/a/{id}"), ErrMissingPathVar},
		{"WrongPathVar", Get("A", "/a/{id}", PathVar("uid")), ErrMissingPathVar},
		{"DuplicatePathVar", Get("A", "/a/{id}", PathVar("id"), PathVar("id")), ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileMethod(tt.method)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsBindingError(err))
		})
	}
}

func TestCompileMethod_Valid(t *testing.T) {
	m, err := compileMethod(Post("Create", "/orgs/{org}/users",
		PathVar("org"), Header("X-Tenant"), JSONBody(),
	).WithHeaders("Accept: application/json"))
	require.NoError(t, err)

	assert.Equal(t, 2, m.bodyIdx)
	assert.False(t, m.hasForm)
	assert.Equal(t, map[string]string{"Accept": "application/json"}, m.headers)

	// 未使用的 PathVar 不影响编译
	_, err = compileMethod(Get("Extra", "/a", PathVar("unused")))
	assert.NoError(t, err)
}

func TestBind(t *testing.T) {
	m, err := compileMethod(Get("List", "/orgs/{org}/users",
		PathVar("org"), Query("tag"), Query("page"), Header("X-Tenant"), Query("missing"),
	))
	require.NoError(t, err)

	page := 2
	b, err := m.bind([]any{"golang", []string{"a", "b"}, &page, "t1", nil})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"org": "golang"}, b.pathVars)
	assert.Equal(t, map[string]string{"X-Tenant": "t1"}, b.headers)
	assert.Equal(t, url.Values{"tag": {"a", "b"}, "page": {"2"}}, b.query)
}

func TestBind_Errors(t *testing.T) {
	m, err := compileMethod(Get("Get", "/users/{id}", PathVar("id"), Header("X-Token")))
	require.NoError(t, err)

	_, err = m.bind([]any{1})
	assert.ErrorIs(t, err, ErrArgCount)

	var nilPtr *int
	_, err = m.bind([]any{nilPtr, "t"})
	assert.ErrorIs(t, err, ErrNilArgument)
	var be *BindingError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "id", be.Param)
	assert.Equal(t, "Get", be.Method)

	_, err = m.bind([]any{1, nil})
	assert.ErrorIs(t, err, ErrNilArgument)
}

type listFilter struct {
	Page  int    `form:"page"`
	Query string `form:"q"`
}

func TestBind_QueryObject(t *testing.T) {
	m, err := compileMethod(Get("Search", "/search", QueryObject(), Query("sort")))
	require.NoError(t, err)

	b, err := m.bind([]any{&listFilter{Page: 3, Query: "go"}, "desc"})
	require.NoError(t, err)
	assert.Equal(t, "3", b.query.Get("page"))
	assert.Equal(t, "go", b.query.Get("q"))
	assert.Equal(t, "desc", b.query.Get("sort"))

	_, err = m.bind([]any{42, "desc"})
	assert.True(t, IsBindingError(err))

	b, err = m.bind([]any{nil, nil})
	require.NoError(t, err)
	assert.Empty(t, b.query)
}

func TestBind_Form(t *testing.T) {
	m, err := compileMethod(Post("Login", "/login", Form("user"), RequiredForm("pass"), Form("remember")))
	require.NoError(t, err)
	assert.True(t, m.hasForm)

	b, err := m.bind([]any{"ann", "secret", nil})
	require.NoError(t, err)
	assert.Equal(t, url.Values{"user": {"ann"}, "pass": {"secret"}}, b.form)
}

type textID struct{ v string }

func (t textID) String() string { return "id-" + t.v }

func TestStringify(t *testing.T) {
	n := 5
	tests := []struct {
		in       any
		expected string
	}{
		{"s", "s"},
		{[]byte("raw"), "raw"},
		{42, "42"},
		{int8(-3), "-3"},
		{uint64(7), "7"},
		{true, "true"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{&n, "5"},
		{textID{"x"}, "id-x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, stringify(tt.in))
	}
}
