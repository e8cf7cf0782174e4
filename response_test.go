package easyhttp

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"Object", `{"code":"OK","message":"success","data":{"id":1}}`, `{"id":1}`},
		{"String", `{"code":"OK","data":"hello \"world\""}`, `hello "world"`},
		{"Number", `{"code":"OK","data":42}`, `42`},
		{"Null", `{"code":"OK","data":null}`, ``},
		{"Missing", `{"code":"OK","message":"done"}`, ``},
		{"EmptyBody", ``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := unwrapEnvelope(http.StatusOK, []byte(tt.raw), DefaultCodec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestUnwrapEnvelope_BizError(t *testing.T) {
	_, err := unwrapEnvelope(http.StatusOK, []byte(`{"code":"INVALID_PARAM","message":"age must be positive","trace_id":"abc"}`), DefaultCodec)
	require.Error(t, err)

	var ee *EnvelopeError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "INVALID_PARAM", ee.Code)
	assert.Equal(t, "age must be positive", ee.Message)
	assert.Contains(t, err.Error(), "trace_id=abc")
}

func TestUnwrapEnvelope_NotEnvelope(t *testing.T) {
	_, err := unwrapEnvelope(http.StatusOK, []byte(`plain text`), DefaultCodec)
	assert.True(t, IsDecodeError(err))
}

func TestResponse_Marshal(t *testing.T) {
	data, err := DefaultCodec.Marshal(Response[testUser]{Code: CodeOK, Message: "success", Data: testUser{Name: "Ann"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"OK","message":"success","data":{"name":"Ann"}}`, string(data))
}
