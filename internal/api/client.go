package api

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // YouTube API requires SHA1 for SAPISIDHASH
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/haryoiro/ytmgrab/internal/auth"
	"github.com/haryoiro/ytmgrab/internal/logger"
)

const (
	YTMDomain = "https://music.youtube.com"
	apiPath   = "/youtubei/v1/"
)

// Target selects the API route a payload is posted to.
type Target int

const (
	TargetBrowse Target = iota
	TargetNext
)

// Route returns the path segment under /youtubei/v1/.
func (t Target) Route() string {
	switch t {
	case TargetBrowse:
		return "browse"
	case TargetNext:
		return "next"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

var (
	// ErrUnauthorized means the session data was rejected and must be re-exported.
	ErrUnauthorized = errors.New("auth data is not valid, please update auth data")

	ErrUnknownTarget = errors.New("unknown target")
)

// StatusError is returned for any non-200, non-401 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// Client replays a captured browser session against the music API.
type Client struct {
	auth       auth.Data
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	now        func() time.Time
	log        *logrus.Entry
}

// NewClient creates a client for the given session data.
func NewClient(data auth.Data, opts Options) (*Client, error) {
	if _, ok := data.Header("Cookie"); !ok {
		return nil, fmt.Errorf("no Cookie header found")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = YTMDomain
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	return &Client{
		auth:       data,
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		now:        time.Now,
		log:        logger.WithComponent("api"),
	}, nil
}

// Send posts payload merged over the captured body to target and returns the
// decoded JSON. Network errors and 5xx responses are retried.
func (c *Client) Send(ctx context.Context, payload map[string]any, target Target) (any, error) {
	if target != TargetBrowse && target != TargetNext {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTarget, int(target))
	}

	body := make(map[string]any, len(c.auth.Body)+len(payload))
	for k, v := range c.auth.Body {
		body[k] = v
	}
	for k, v := range payload {
		body[k] = v
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			c.log.WithField("attempt", attempt+1).Warnf("retrying %s: %v", target.Route(), lastErr)
		}

		result, err := c.do(ctx, target, jsonBody)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, target Target, jsonBody []byte) (any, error) {
	endpoint, err := url.Parse(c.baseURL + apiPath + target.Route())
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	for k, v := range c.auth.Params {
		query.Set(k, v)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}

	for k, v := range c.auth.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Origin", YTMDomain)
	if sapisid := c.auth.SAPISID(); sapisid != "" {
		req.Header.Set("Authorization", "SAPISIDHASH "+c.computeSAPIHash(sapisid))
	}
	// Let the transport negotiate and decode compression.
	req.Header.Del("Accept-Encoding")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", target.Route(), err)
	}

	c.log.Debugf("%s returned %d bytes", target.Route(), len(respBody))
	return result, nil
}

// computeSAPIHash computes the SAPISIDHASH for authorization.
func (c *Client) computeSAPIHash(sapisid string) string {
	timestamp := c.now().Unix()
	data := fmt.Sprintf("%d %s %s", timestamp, sapisid, YTMDomain)

	h := sha1.New() //nolint:gosec // YouTube API requires SHA1 for SAPISIDHASH
	h.Write([]byte(data))
	hash := fmt.Sprintf("%x", h.Sum(nil))

	return fmt.Sprintf("%d_%s", timestamp, hash)
}

func retryable(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	var syntaxErr *json.SyntaxError
	return !errors.As(err, &syntaxErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
