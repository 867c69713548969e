package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type (
	HttpClient interface {
		Do(ctx context.Context, method, requestUrl string, body, response interface{}, opts ...RequestOption) error
	}

	RequestOption func(req *http.Request)

	// ResponseError is returned for any non-2xx answer. Body holds the raw response body.
	ResponseError struct {
		StatusCode int
		Body       []byte
	}
)

type impl struct {
	client  *http.Client
	baseUrl string
}

func NewHttpClient(baseUrl string, timeout time.Duration) HttpClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return impl{client: &http.Client{Timeout: timeout}, baseUrl: baseUrl}
}

func WithBearerToken(token string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, string(e.Body))
}

func (c impl) Do(ctx context.Context, method, requestUrl string, body, response interface{}, opts ...RequestOption) error {
	var reader io.Reader
	if body != nil {
		bodyBin, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(bodyBin)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+requestUrl, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ResponseError{StatusCode: resp.StatusCode, Body: responseBody}
	}

	if response != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, response); err != nil {
			return err
		}
	}
	return nil
}
