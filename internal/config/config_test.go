package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("NPM_URL", "https://npm.internal:81/")
	t.Setenv("NPM_IDENTITY", "admin@example.com")
	t.Setenv("NPM_SECRET", "changeme")
	t.Setenv("PROXY_FORWARD_HOST", "192.168.1.240")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":3646", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5*time.Second, cfg.DNS.Timeout)
	assert.Empty(t, cfg.DNS.Nameservers)
	assert.Equal(t, "https://npm.internal:81", cfg.Proxy.URL)
	assert.Equal(t, "http", cfg.Proxy.ForwardScheme)
	assert.Equal(t, 5000, cfg.Proxy.ForwardPort)
	assert.Equal(t, time.Duration(0), cfg.RecheckInterval)
	assert.Equal(t, 5, cfg.MaxDashboardsPerUser)
	assert.Equal(t, 10, cfg.MaxSectionsPerDashboard)
	assert.False(t, cfg.HasTLSConfig())
	assert.False(t, cfg.HasStorage())
}

func TestNew_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DNS_NAMESERVERS", "1.1.1.1:53, 8.8.8.8:53,")
	t.Setenv("DNS_TIMEOUT", "2s")
	t.Setenv("PROXY_FORWARD_SCHEME", "https")
	t.Setenv("PROXY_FORWARD_PORT", "8443")
	t.Setenv("PROXY_ROOT_PATH", "/erreib")
	t.Setenv("RECHECK_INTERVAL", "10m")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1:53", "8.8.8.8:53"}, cfg.DNS.Nameservers)
	assert.Equal(t, 2*time.Second, cfg.DNS.Timeout)
	assert.Equal(t, "https", cfg.Proxy.ForwardScheme)
	assert.Equal(t, 8443, cfg.Proxy.ForwardPort)
	assert.Equal(t, "/erreib", cfg.Proxy.RootPath)
	assert.Equal(t, 10*time.Minute, cfg.RecheckInterval)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown forward scheme", key: "PROXY_FORWARD_SCHEME", value: "ftp"},
		{name: "port out of range", key: "PROXY_FORWARD_PORT", value: "70000"},
		{name: "port not a number", key: "PROXY_FORWARD_PORT", value: "http"},
		{name: "bad duration", key: "DNS_TIMEOUT", value: "soon"},
		{name: "short jwt secret", key: "JWT_SECRET", value: "short"},
		{name: "unknown db driver", key: "DB_DRIVER", value: "oracle"},
		{name: "nameserver without port", key: "DNS_NAMESERVERS", value: "1.1.1.1"},
		{name: "root path without slash", key: "PROXY_ROOT_PATH", value: "erreib"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(test.key, test.value)

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestNew_MissingProxyCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("NPM_SECRET", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Secret")
}
