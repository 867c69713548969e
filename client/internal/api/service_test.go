package api

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func writeEnvelope(w http.ResponseWriter, status int, kind, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   status >= 400,
		"kind":    kind,
		"message": message,
		"data":    data,
	})
}

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewService(NewClient(Config{Host: server.URL, Token: "session"}))
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/login", r.URL.Path)
		params := LoginParams{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		if params.Password != "password1" {
			writeEnvelope(w, http.StatusUnauthorized, "unauthorized", "invalid username/email or password", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "", "ok", AuthResponse{UserID: 1, Username: params.Login, Token: "jwt"})
	})

	resp, err := svc.Login(context.Background(), LoginParams{Login: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)

	_, err = svc.Login(context.Background(), LoginParams{Login: "alice", Password: "wrong"})
	apiErr := &Error{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "unauthorized", apiErr.Kind)
	assert.Equal(t, "invalid username/email or password", err.Error())
}

func TestService_Verify(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		kind       string
		result     VerificationResult
		expectKind string
	}{
		{
			name:   "verified",
			status: http.StatusOK,
			result: VerificationResult{IsVerified: true, IsProvisioned: true, State: "verified"},
		},
		{
			name:       "token not found",
			status:     http.StatusBadRequest,
			kind:       "verification_failed",
			result:     VerificationResult{State: "pending_verification"},
			expectKind: "verification_failed",
		},
		{
			name:       "proxy rejected",
			status:     http.StatusBadGateway,
			kind:       "provision_error",
			result:     VerificationResult{IsVerified: true, State: "verified_unprovisioned"},
			expectKind: "provision_error",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/dashboards/7/verification/verify", r.URL.Path)
				assert.Equal(t, "Bearer session", r.Header.Get("Authorization"))
				writeEnvelope(w, test.status, test.kind, "msg", test.result)
			})

			result, err := svc.Verify(context.Background(), 7)
			assert.Equal(t, test.result.State, result.State)
			assert.Equal(t, test.result.IsVerified, result.IsVerified)
			if test.expectKind == "" {
				require.NoError(t, err)
				return
			}
			apiErr := &Error{}
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, test.expectKind, apiErr.Kind)
		})
	}
}

func TestService_WatchVerification(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/dashboards/3/verification/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = fmt.Fprintln(w, `{"type":"info","message":"pending_verification"}`)
		_, _ = fmt.Fprintln(w, `not json`)
		_, _ = fmt.Fprintln(w, `{"type":"complete","message":"custom.example.com is verified"}`)
	})

	ch, err := svc.WatchVerification(context.Background(), 3)
	require.NoError(t, err)

	events := make([]Event, 0)
	for ev := range ch {
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, Info, events[0].Type)
	assert.Equal(t, Complete, events[1].Type)
}

func TestService_UploadMedia(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("media")
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(file)
		writeEnvelope(w, http.StatusCreated, "", "uploaded", Media{ID: 1, Key: "alice/" + header.Filename, Size: int64(len(b))})
	})

	media, err := svc.UploadMedia(context.Background(), "logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "alice/logo.png", media.Key)
	assert.EqualValues(t, 9, media.Size)
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{host: "https://accordee.dev", expected: "https://accordee.dev/v1/"},
		{host: "https://accordee.dev/", expected: "https://accordee.dev/v1/"},
		{host: "https://accordee.dev/v1/", expected: "https://accordee.dev/v1/"},
	}

	for _, test := range tests {
		t.Run(test.host, func(t *testing.T) {
			c := NewClient(Config{Host: test.host}).(*client)
			assert.Equal(t, test.expected, c.baseUrl)
		})
	}
}
