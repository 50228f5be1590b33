// Package pan is a client for the PAN affiliate platform API.
//
// Every call is independent: the client holds no session state, so each
// report requires a fresh Login followed by GetStats.
package pan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/R3E-Network/impact_service/internal/httputil"
	"github.com/R3E-Network/impact_service/internal/metrics"
)

// API paths relative to the configured base URL.
const (
	LoginPath = "/api/merchant/login"
	StatsPath = "/api/affiliates/Reports/getStats"
)

const (
	maxResponseBytes = 8 << 20
	// Error bodies up to this size are drained so the connection can be reused.
	maxDrainBytes = 64 << 10
)

var errInvalidJSON = errors.New("invalid JSON response body")

// Client talks to the PAN API. It is safe for concurrent use.
type Client struct {
	http        *httputil.ServiceClient
	credentials Credentials
	reportRange DateRange
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
	HTTPClient  *http.Client // optional
}

// NewClient creates a PAN client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("pan: base URL required")
	}
	return &Client{
		http: httputil.NewServiceClient(httputil.ServiceClientConfig{
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		}),
		credentials: cfg.Credentials,
		reportRange: ReportRange,
	}, nil
}

// Login exchanges the configured credentials for a session identifier.
func (c *Client) Login(ctx context.Context) (string, error) {
	start := time.Now()

	status, body, err := c.post(ctx, LoginPath, loginRequest{
		Username: c.credentials.Username,
		Password: c.credentials.Password,
	})
	if err != nil {
		metrics.RecordUpstreamCall("login", metrics.OutcomeError, time.Since(start))
		return "", &AuthenticationError{StatusCode: status, Err: err}
	}
	if !httputil.IsSuccess(status) {
		metrics.RecordUpstreamCall("login", metrics.OutcomeBadStatus, time.Since(start))
		return "", &AuthenticationError{StatusCode: status}
	}
	if !gjson.ValidBytes(body) {
		metrics.RecordUpstreamCall("login", metrics.OutcomeBadFormat, time.Since(start))
		return "", &AuthenticationError{StatusCode: status, Err: errInvalidJSON}
	}

	session := gjson.GetBytes(body, "sessionId")
	if !truthy(session) {
		metrics.RecordUpstreamCall("login", metrics.OutcomeBadFormat, time.Since(start))
		return "", &AuthenticationError{StatusCode: status, Err: ErrMissingSession}
	}

	metrics.RecordUpstreamCall("login", metrics.OutcomeSuccess, time.Since(start))
	return session.String(), nil
}

// GetStats fetches the commission rows of the report range for a session.
func (c *Client) GetStats(ctx context.Context, sessionID string) ([]Row, error) {
	start := time.Now()

	status, body, err := c.post(ctx, StatsPath, statsRequest{
		SessionID: sessionID,
		DateFrom:  c.reportRange.From,
		DateTo:    c.reportRange.To,
	})
	if err != nil {
		metrics.RecordUpstreamCall("stats", metrics.OutcomeError, time.Since(start))
		return nil, &FetchError{StatusCode: status, Err: err}
	}
	if !httputil.IsSuccess(status) {
		metrics.RecordUpstreamCall("stats", metrics.OutcomeBadStatus, time.Since(start))
		return nil, &FetchError{StatusCode: status}
	}
	if !gjson.ValidBytes(body) {
		metrics.RecordUpstreamCall("stats", metrics.OutcomeBadFormat, time.Since(start))
		return nil, &FormatError{Err: errInvalidJSON}
	}

	result := gjson.GetBytes(body, "rows")
	if !result.IsArray() {
		metrics.RecordUpstreamCall("stats", metrics.OutcomeBadFormat, time.Since(start))
		return nil, &FormatError{}
	}

	items := result.Array()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{data: item})
	}

	metrics.RecordUpstreamCall("stats", metrics.OutcomeSuccess, time.Since(start))
	return rows, nil
}

// post sends a JSON body and returns the status and the size-limited body.
// The status is zero when no response was received.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	resp, err := c.http.Post(ctx, path, payload)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return resp.StatusCode, nil, nil
	}

	body, err := httputil.ReadAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// truthy mirrors how the platform's own clients test a sessionId:
// null, false, "" and 0 do not count as a session.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}
