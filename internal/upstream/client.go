package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"inspection-portal/config"
)

// Client is a typed client for the upstream inspection REST API. All
// entity identity lives upstream; the portal only requests it. The
// bearer token is passed per call because every session carries its
// own upstream-issued token.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client from the upstream configuration.
func New(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// errorBody models the upstream error payload.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (which may be nil). Non-2xx responses are
// returned as *APIError; transport failures are returned wrapped so
// they stay distinguishable from HTTP-status errors.
func (c *Client) doJSON(ctx context.Context, token, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
		contentType = "application/json"
	}
	return c.do(ctx, token, method, path, body, contentType, out)
}

// do issues a request with a raw body and decodes the JSON response.
func (c *Client) do(ctx context.Context, token, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFrom(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal api response: %w", err)
		}
	}
	return nil
}

// stream issues a GET and hands back the raw response for streaming
// (file downloads). The caller owns the returned body.
func (c *Client) stream(ctx context.Context, token, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, apiErrorFrom(resp.StatusCode, respBody)
	}
	return resp, nil
}

func apiErrorFrom(status int, body []byte) *APIError {
	var parsed errorBody
	// A non-JSON error body still yields a usable APIError.
	_ = json.Unmarshal(body, &parsed)
	if parsed.Message == "" {
		parsed.Message = "Something went wrong"
	}
	return &APIError{Status: status, Message: parsed.Message, Errors: parsed.Errors}
}
