package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "internal.example")

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/v1", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)

	req, _ = http.NewRequest(http.MethodGet, "http://internal.example/detect", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u, "no_proxy hosts bypass the proxy")
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "")

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)
}
