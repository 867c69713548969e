package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

type (
	MultipartFile struct {
		Content io.Reader
		Name    string
	}

	Params struct {
		Method      string
		Path        string
		Body        interface{}
		Response    interface{}
		QueryParams map[string]string
		Headers     map[string]string
	}

	Client interface {
		Do(ctx context.Context, param Params) error
		DoMultipart(ctx context.Context, field string, file MultipartFile, params Params) error
		SSE(ctx context.Context, param Params) (io.ReadCloser, error)
	}

	client struct {
		httpClient *http.Client
		baseUrl    string
		token      string
	}

	envelope struct {
		Error   bool            `json:"error"`
		Kind    string          `json:"kind"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
)

func NewClient(cfg Config) Client {
	host := cfg.Host
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	if !strings.HasSuffix(host, "v1/") {
		host += "v1/"
	}

	return &client{
		httpClient: &http.Client{},
		baseUrl:    host,
		token:      cfg.Token,
	}
}

func (c client) Do(ctx context.Context, param Params) error {
	var body io.Reader
	if param.Body != nil {
		bodyBin, err := json.Marshal(param.Body)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(bodyBin)
	}

	req, err := c.newRequest(ctx, param, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, param.Response)
}

func (c client) DoMultipart(ctx context.Context, field string, file MultipartFile, params Params) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filePart, err := writer.CreateFormFile(field, file.Name)
	if err != nil {
		return err
	}
	if _, err = io.Copy(filePart, file.Content); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, params, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, params.Response)
}

// SSE opens a streaming request. The caller owns the returned body.
func (c client) SSE(ctx context.Context, param Params) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, param, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() {
			_ = resp.Body.Close()
		}()
		b, _ := io.ReadAll(resp.Body)
		return nil, parseError(resp.StatusCode, b)
	}
	return resp.Body, nil
}

func (c client) newRequest(ctx context.Context, param Params, body io.Reader) (*http.Request, error) {
	requestUrl, err := url.Parse(c.baseUrl + param.Path)
	if err != nil {
		return nil, err
	}

	if len(param.QueryParams) > 0 {
		values := url.Values{}
		for k, v := range param.QueryParams {
			values.Add(k, v)
		}
		requestUrl.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, param.Method, requestUrl.String(), body)
	if err != nil {
		return nil, err
	}

	for k, v := range param.Headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c client) do(req *http.Request, response interface{}) error {
	resp, err := c.httpClient.Do(req)
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
		return parseError(resp.StatusCode, responseBody)
	}

	if response != nil {
		env := envelope{}
		if err := json.Unmarshal(responseBody, &env); err != nil {
			return err
		}
		if len(env.Data) > 0 {
			return json.Unmarshal(env.Data, response)
		}
	}
	return nil
}

func parseError(status int, b []byte) error {
	env := envelope{}
	if err := json.Unmarshal(b, &env); err != nil {
		return &Error{StatusCode: status, Message: strings.TrimSpace(string(b))}
	}
	return &Error{StatusCode: status, Kind: env.Kind, Message: env.Message, Data: env.Data}
}
