// Package rest reads time entry snapshots from the shop-floor backend API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
	"shopfloor/internal/source"
)

// TimeEntriesPath is appended to the base URL.
const TimeEntriesPath = "/timeEntries"

// maxBodyBytes bounds a snapshot response.
const maxBodyBytes = 64 << 20

var _ source.TimeEntryReader = (*Client)(nil)

// ErrUnexpectedStatus is wrapped when the backend answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for baseURL. The timeout bounds a whole request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	return &Client{
		endpoint: u.String() + TimeEntriesPath,
		http:     newHTTPClientWithPooling(timeout),
	}, nil
}

// newHTTPClientWithPooling keeps connections to the backend alive between passes
func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// FetchTimeEntries GETs the full snapshot. The body is either a JSON array
// or an object with the array under "data".
func (c *Client) FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, c.endpoint, snippet(body))
	}

	entries, err := decodeSnapshot(body)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Fetched time entries",
		applog.FieldComponent, applog.ComponentREST,
		applog.FieldOperation, applog.OpFetch,
		"endpoint", c.endpoint,
		"entries", len(entries),
		"duration_ms", time.Since(start).Milliseconds())
	return entries, nil
}

func decodeSnapshot(body []byte) ([]core.RawTimeEntry, error) {
	body = bytes.TrimSpace(body)
	entries := make([]core.RawTimeEntry, 0)
	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Data []core.RawTimeEntry `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode time entries: %w", err)
		}
		return append(entries, envelope.Data...), nil
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode time entries: %w", err)
	}
	if entries == nil {
		entries = make([]core.RawTimeEntry, 0)
	}
	return entries, nil
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
