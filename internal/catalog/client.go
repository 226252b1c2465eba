package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var ErrUnavailable = errors.New("catalog unavailable")

// errEmptyBody is a 2xx answer without a JSON document. fakestoreapi answers
// GET of an unknown id this way.
var errEmptyBody = errors.New("empty response body")

// APIError is a non-2xx answer from the catalog API. Message is meant to be
// shown to a person.
type APIError struct {
	Method  string
	URL     string
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsNotFound reports whether err is a 404 from the catalog API or a lookup
// that came back empty.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client talks to a fakestoreapi-style product collection. BaseURL is the
// collection itself, e.g. https://fakestoreapi.com/products.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

func (c *Client) List(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, c.BaseURL, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &p)
	switch {
	case errors.Is(err, errEmptyBody):
		return Product{}, ErrNotFound
	case err != nil:
		return Product{}, err
	}
	return p, nil
}

func (c *Client) Create(ctx context.Context, d Draft) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, c.BaseURL, d, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) Update(ctx context.Context, id int, patch Patch) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), patch, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id int) string {
	return c.BaseURL + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", method, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("catalog request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, target, err)
	}
	defer resp.Body.Close()

	c.Log.Debug("catalog request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:  method,
			URL:     target,
			Status:  resp.StatusCode,
			Message: failureMessage(target, resp.StatusCode, raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %s %s", errEmptyBody, method, target)
		}
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}

// failureMessage prefers the "error" field of a JSON error body and falls
// back to the status line.
func failureMessage(target string, status int, raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("Http failure response for %s: %d %s", target, status, http.StatusText(status))
}
