package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/common"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
	"github.com/dmitrijs2005/brokerdesk/internal/netx"
)

const maxResponseBytes = 4 << 20

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

// Client talks JSON over HTTP to the backend rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

// New returns a Client whose every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, log logging.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

// SetToken sets the session token sent as a bearer credential. An empty
// token stops sending the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one request and returns the envelope's data member.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any) (json.RawMessage, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(query) > 0 {
		q := url.Values{}
		for k, v := range query {
			q.Set(k, v)
		}
		endpoint += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if netx.IsUnreachable(err) {
			c.log.Debug(ctx, "backend unreachable", "method", method, "path", path, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.log.Warn(ctx, "transport failure", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusBadRequest && (resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0) {
		return nil, nil
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.log.Debug(ctx, "backend error", "method", method, "path", path, "status", resp.StatusCode)
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "malformed response: " + decodeErr.Error()}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}
	return env.Data, nil
}

// member decodes data[key] into v.
func member(data json.RawMessage, key string, v any) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	raw, ok := m[key]
	if !ok {
		return fmt.Errorf("response has no %q member", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
