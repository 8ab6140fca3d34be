package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"smartentrance/internal/utils/crypto"
	"smartentrance/internal/utils/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

// UnauthorizedHandler is invoked once for every 401 the backend returns.
type UnauthorizedHandler func(err *Error)

// Client is the thin JSON wrapper around the SmartEntrance REST backend.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	signingSecret  string
	onUnauthorized UnauthorizedHandler
	log            *logger.Logger
}

type Option func(*Client)

func WithSigningSecret(secret string) Option {
	return func(c *Client) { c.signingSecret = secret }
}

// New creates a client for baseURL (for example http://backend/api) with one fixed timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     logger.New("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Signed reports whether requests carry the signature headers.
func (c *Client) Signed() bool {
	return c.signingSecret != ""
}

// Cookies returns the cookies the client's jar would send to the backend.
func (c *Client) Cookies() []*http.Cookie {
	if c.http.Jar == nil {
		return nil
	}
	return c.http.Jar.Cookies(c.baseURL)
}

func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// WithJar returns a copy of the client that sends and records cookies through jar.
func (c *Client) WithJar(jar http.CookieJar) *Client {
	cp := *c
	hc := *c.http
	hc.Jar = jar
	cp.http = &hc
	return &cp
}

// WithUnauthorizedHandler returns a copy of the client using fn for 401 responses.
func (c *Client) WithUnauthorizedHandler(fn UnauthorizedHandler) *Client {
	cp := *c
	cp.onUnauthorized = fn
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, query, nil, out)
}

// Upload sends content as the multipart field "file" together with plain form fields.
func (c *Client) Upload(ctx context.Context, path, filename, contentType string, content io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), w.FormDataContentType(), out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
	}
	return c.do(ctx, method, path, query, payload, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if c.signingSecret != "" {
		for k, v := range Sign(c.signingSecret, method, u.Path, payload, time.Now()) {
			req.Header[k] = v
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return transportError(err, ErrTimeout)
		}
		return transportError(err, ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err, ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := fromResponse(resp.StatusCode, raw)
		c.log.Warn("%s %s failed: %s", method, u.Path, apiErr.Error())
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Message: fmt.Sprintf("decode %s %s response: %v", method, path, err),
			Status:  resp.StatusCode,
			Raw:     raw,
			cause:   err,
		}
	}
	return nil
}

// Sign returns the timestamp and signature headers the backend checks on signed calls.
func Sign(secret, method, path string, payload []byte, now time.Time) http.Header {
	ts := strconv.FormatInt(now.Unix(), 10)
	h := make(http.Header, 2)
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderSignature, crypto.ComputeSignature(secret, method, path, ts, string(payload)))
	return h
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
