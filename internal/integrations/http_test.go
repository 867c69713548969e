package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHttpClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(map[string]string{"got": in["name"]})
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad"}}`))
		}
	}))
	defer server.Close()

	client := NewHttpClient(server.URL, time.Second)
	ctx := context.Background()

	out := map[string]string{}
	err := client.Do(ctx, http.MethodPost, "/echo", map[string]string{"name": "accordee"}, &out, WithBearerToken("secret"))
	require.NoError(t, err)
	assert.Equal(t, "accordee", out["got"])

	var raw json.RawMessage
	require.NoError(t, client.Do(ctx, http.MethodGet, "/empty", nil, &raw))
	assert.Empty(t, raw)

	err = client.Do(ctx, http.MethodGet, "/fail", nil, nil)
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.Contains(t, string(respErr.Body), "bad")
}
