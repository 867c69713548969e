package npm

import (
	"accordee/internal/config"
	"accordee/internal/integrations"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

// Provisioner registers forwarding rules for verified domains with Nginx Proxy Manager.
type Provisioner interface {
	// RegisterHost creates a proxy host for domain and returns the raw registration response.
	// Every call talks to the control API once; nothing is retried.
	RegisterHost(ctx context.Context, domain string) (json.RawMessage, error)
}

type client struct {
	httpClient integrations.HttpClient
	cfg        config.ProxyConfig
}

func NewProvisioner(cfg config.ProxyConfig) Provisioner {
	return &client{
		httpClient: integrations.NewHttpClient(cfg.URL, cfg.Timeout),
		cfg:        cfg,
	}
}

func (c *client) RegisterHost(ctx context.Context, domain string) (json.RawMessage, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	var response json.RawMessage
	err = c.httpClient.Do(ctx, http.MethodPost, "/api/nginx/proxy-hosts", c.proxyHost(domain), &response,
		integrations.WithBearerToken(token))
	if err != nil {
		return nil, provisionError("failed to create proxy host for "+domain, err)
	}

	logger.Info("proxy host created",
		zap.String("domain", domain),
		zap.String("forward_host", c.cfg.ForwardHost),
		zap.Int("forward_port", c.cfg.ForwardPort))
	return response, nil
}

func (c *client) authenticate(ctx context.Context) (string, error) {
	resp := &tokenResponse{}
	err := c.httpClient.Do(ctx, http.MethodPost, "/api/tokens", tokenRequest{
		Identity: c.cfg.Identity,
		Secret:   c.cfg.Secret,
	}, resp)
	if err != nil {
		return "", provisionError("failed to authenticate with proxy manager", err)
	}
	if resp.Token == "" {
		return "", types.NewError(types.KindProvision, "proxy manager returned an empty token", nil)
	}
	return resp.Token, nil
}

func (c *client) proxyHost(domain string) ProxyHostRequest {
	return ProxyHostRequest{
		DomainNames:    []string{domain},
		ForwardScheme:  c.cfg.ForwardScheme,
		ForwardHost:    c.cfg.ForwardHost,
		ForwardPort:    c.cfg.ForwardPort,
		AdvancedConfig: RootRedirect(c.cfg.RootPath),
	}
}

// RootRedirect returns the nginx snippet sending requests for / to the dashboard root path.
// An empty or "/" path needs no redirect.
func RootRedirect(rootPath string) string {
	path := strings.Trim(rootPath, "/")
	if path == "" {
		return ""
	}
	return fmt.Sprintf("location = / {\n\treturn 301 $scheme://$http_host/%s/;\n}", path)
}

func provisionError(message string, err error) error {
	var respErr *integrations.ResponseError
	if errors.As(err, &respErr) {
		upstream := strings.TrimSpace(string(respErr.Body))
		body := errorResponse{}
		if json.Unmarshal(respErr.Body, &body) == nil && body.Error.Message != "" {
			upstream = body.Error.Message
		}
		message = fmt.Sprintf("%s: upstream responded %d: %s", message, respErr.StatusCode, upstream)
	}
	return types.NewError(types.KindProvision, message, err)
}
