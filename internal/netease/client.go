package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a NeteaseCloudMusicApi-compatible HTTP server.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	now       func() time.Time
}

const (
	defaultAPIBase        = "127.0.0.1:3000"
	defaultUserAgent      = "cadence/0.1"
	defaultRequestTimeout = 10 * time.Second
	okCode                = 200
)

// NewClient builds a Client for apiBase (host:port or a full URL). A zero
// timeout uses the default.
func NewClient(apiBase string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		now:       time.Now,
	}, nil
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// QRKey requests a one-time login key.
func (c *Client) QRKey(ctx context.Context) (QRKeyResponse, error) {
	if c == nil {
		return QRKeyResponse{}, fmt.Errorf("client is nil")
	}
	var payload QRKeyResponse
	if err := c.get(ctx, "/login/qr/key", nil, "", &payload); err != nil {
		return QRKeyResponse{}, err
	}
	return payload, nil
}

// QRCreate asks the server to render key as a QR code image.
func (c *Client) QRCreate(ctx context.Context, key string) (QRCreateResponse, error) {
	if c == nil {
		return QRCreateResponse{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return QRCreateResponse{}, fmt.Errorf("qr key required")
	}
	values := url.Values{}
	values.Set("key", key)
	values.Set("qrimg", "true")
	var payload QRCreateResponse
	if err := c.get(ctx, "/login/qr/create", values, "", &payload); err != nil {
		return QRCreateResponse{}, err
	}
	if payload.Code != okCode {
		return QRCreateResponse{}, fmt.Errorf("api /login/qr/create returned code %d", payload.Code)
	}
	return payload, nil
}

// QRCheck reports the scan status for key. A reply without a code is an
// error.
func (c *Client) QRCheck(ctx context.Context, key string) (QRCheckResponse, error) {
	if c == nil {
		return QRCheckResponse{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return QRCheckResponse{}, fmt.Errorf("qr key required")
	}
	values := url.Values{}
	values.Set("key", key)
	var payload qrCheckPayload
	if err := c.get(ctx, "/login/qr/check", values, "", &payload); err != nil {
		return QRCheckResponse{}, err
	}
	if payload.Code == nil {
		return QRCheckResponse{}, fmt.Errorf("api /login/qr/check reply has no code field")
	}
	return QRCheckResponse{
		Code:    *payload.Code,
		Message: payload.Message,
		Cookie:  payload.Cookie,
	}, nil
}

// Account fetches the account owning cookie.
func (c *Client) Account(ctx context.Context, cookie string) (AccountResponse, error) {
	if c == nil {
		return AccountResponse{}, fmt.Errorf("client is nil")
	}
	var payload AccountResponse
	if err := c.get(ctx, "/user/account", nil, cookie, &payload); err != nil {
		return AccountResponse{}, err
	}
	if payload.Code != okCode {
		return AccountResponse{}, fmt.Errorf("api /user/account returned code %d", payload.Code)
	}
	return payload, nil
}

// Logout ends the remote session for cookie.
func (c *Client) Logout(ctx context.Context, cookie string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var payload struct {
		Code int `json:"code"`
	}
	rel := c.relURL("/logout", nil)
	if err := c.doURL(ctx, http.MethodPost, rel, cookie, &payload); err != nil {
		return err
	}
	if payload.Code != okCode {
		return fmt.Errorf("api /logout returned code %d", payload.Code)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values, cookie string, dest any) error {
	return c.doURL(ctx, http.MethodGet, c.relURL(path, values), cookie, dest)
}

// relURL adds the timestamp cache buster the API server expects.
func (c *Client) relURL(path string, values url.Values) *url.URL {
	if values == nil {
		values = url.Values{}
	}
	values.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	return &url.URL{Path: path, RawQuery: values.Encode()}
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, cookie string, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
