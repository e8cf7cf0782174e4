package easyhttp

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userAPI struct {
	GetUser    func(ctx context.Context, id int, active bool) (*testUser, error)
	CreateUser func(ctx context.Context, u *testUser) error
	Total      func(ctx context.Context) (int, error) `easyhttp:"Count"`
	Skipped    func() string                          `easyhttp:"-"`
}

func TestImplement(t *testing.T) {
	c, fs := newUserClient(t)

	var api userAPI
	require.NoError(t, c.Implement(&api))
	require.NotNil(t, api.GetUser)
	require.NotNil(t, api.CreateUser)
	require.NotNil(t, api.Total)
	assert.Nil(t, api.Skipped)

	ctx := context.Background()

	u, err := api.GetUser(ctx, 42, true)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "/users/42", fs.last(t).Path)
	assert.Equal(t, "active=true", fs.last(t).RawQuery)

	n, err := api.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, api.CreateUser(ctx, &testUser{Name: "Bob"}))
	assert.Equal(t, http.MethodPost, fs.last(t).Method)

	// 失败时返回零值
	u, err = api.GetUser(ctx, 404, false)
	assert.Nil(t, u)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	err = api.CreateUser(ctx, nil)
	assert.NoError(t, err)
}

func TestImplement_NilContext(t *testing.T) {
	c, _ := newUserClient(t)

	var api userAPI
	require.NoError(t, c.Implement(&api))

	//nolint:staticcheck
	n, err := api.Total(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImplement_InvalidTargets(t *testing.T) {
	c, _ := newUserClient(t)

	tests := []struct {
		name   string
		target any
	}{
		{"Nil", nil},
		{"NotPointer", userAPI{}},
		{"PointerToNonStruct", new(int)},
		{"NoFuncFields", &struct{ A int }{}},
		{"UnknownMethod", &struct {
			Missing func(context.Context) error
		}{}},
		{"NoContext", &struct {
			Count func() (int, error)
		}{}},
		{"WrongArity", &struct {
			GetUser func(context.Context, int) (*testUser, error)
		}{}},
		{"NoError", &struct {
			Count func(context.Context) int
		}{}},
		{"TooManyResults", &struct {
			Count func(context.Context) (int, int, error)
		}{}},
		{"Variadic", &struct {
			GetUser func(context.Context, ...any) error
		}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Implement(tt.target)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTarget)
		})
	}
}

func TestImplement_NoPartialAssignment(t *testing.T) {
	c, _ := newUserClient(t)

	target := &struct {
		Count   func(context.Context) (int, error)
		Missing func(context.Context) error
	}{}
	require.Error(t, c.Implement(target))
	assert.Nil(t, target.Count)
}
