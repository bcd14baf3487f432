// Package gateway implements the typed wrappers around the remote services the
// console depends on. Each exported method performs exactly one HTTP call.
package gateway

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
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20

	// TunnelBypassHeader must be present on every call routed through the
	// development tunnel, otherwise the tunnel answers with an HTML interstitial.
	TunnelBypassHeader = "ngrok-skip-browser-warning"
)

// Client is the shared JSON-over-HTTP transport for one remote service.
type Client struct {
	service      string
	baseURL      string
	hc           *http.Client
	tokens       ports.TokenSource
	tunnelBypass bool
	log          zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource makes the client attach "Authorization: Bearer <token>" to
// every call. The source is read per call, never cached.
func WithTokenSource(ts ports.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTunnelBypass toggles the tunnel bypass header.
func WithTunnelBypass(enabled bool) Option {
	return func(c *Client) { c.tunnelBypass = enabled }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client for service rooted at baseURL.
func NewClient(service, baseURL string, opts ...Option) *Client {
	c := &Client{
		service:      service,
		baseURL:      strings.TrimRight(baseURL, "/"),
		hc:           &http.Client{Timeout: defaultTimeout},
		tunnelBypass: true,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping issues a HEAD against the base URL. Any HTTP answer counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	c.decorate(ctx, req)
	resp, err := c.hc.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: c.service + ".ping", Err: err}
	}
	_ = resp.Body.Close()
	return nil
}

// do performs one call. A non-nil out is filled from the JSON response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveGatewayCall(c.service, op, outcome(err), time.Since(start))
		if err != nil {
			c.log.Warn().Err(err).Str("service", c.service).Str("op", op).Msg("remote call failed")
		}
	}()

	fullOp := c.service + "." + op
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, mErr := json.Marshal(in)
		if mErr != nil {
			return fmt.Errorf("%s: encode request: %w", fullOp, mErr)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", fullOp, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(ctx, req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: fullOp, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.NetworkError{Op: fullOp, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.NetworkError{
			Op:         fullOp,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &domain.DecodeError{Op: fullOp, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.DecodeError{Op: fullOp, Err: err}
	}
	if a, ok := out.(acknowledger); ok {
		if reason, accepted := a.accepted(); !accepted {
			return &domain.RejectedError{Op: fullOp, Reason: reason}
		}
	}
	return nil
}

// decorate attaches the per-call headers. The token is re-read on every call
// so a login that happens after construction is honoured.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if c.tokens != nil {
		if tok := c.tokens.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if c.tunnelBypass {
		req.Header.Set(TunnelBypassHeader, "true")
	}
}

func outcome(err error) string {
	var (
		ne *domain.NetworkError
		de *domain.DecodeError
		re *domain.RejectedError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &re):
		return "rejected"
	case errors.As(err, &de):
		return "decode_error"
	case errors.As(err, &ne):
		return "network_error"
	default:
		return "error"
	}
}
