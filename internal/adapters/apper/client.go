// Package apper implements the table-store port against the hosted Apper
// record API: five table-oriented operations behind a success/message
// envelope, with client-side rate limiting and retry on transient failures.
package apper

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayscape/internal/adapters/observability"
	"stayscape/internal/domain"
)

type Client struct {
	base      string
	hc        *http.Client
	projectID string
	publicKey string
	rl        *rate.Limiter
}

func New(base, projectID, publicKey string, rps int) (*Client, error) {
	if projectID == "" || publicKey == "" {
		return nil, fmt.Errorf("apper: project id and public key are required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		hc:        &http.Client{Timeout: 20 * time.Second},
		projectID: projectID,
		publicKey: publicKey,
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// RemoteError is a failure the backend reported through its envelope
// (success=false), as opposed to a transport-level failure.
type RemoteError struct{ Message string }

func (e *RemoteError) Error() string { return "apper: " + e.Message }

// envelope is the response wrapper every operation returns. Reads carry
// Data; writes carry per-record Results.
type envelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    json.RawMessage      `json:"data"`
	Results []domain.WriteResult `json:"results"`
}

func (c *Client) Fetch(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	env, err := c.do(ctx, http.MethodPost, c.url(table, "records/fetch"), fetchBody(q))
	if err != nil {
		return nil, err
	}
	var recs []domain.Record
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &recs); err != nil {
			return nil, fmt.Errorf("apper: decode records: %w", err)
		}
	}
	return recs, nil
}

func (c *Client) Get(ctx context.Context, table string, id int, q domain.Query) (domain.Record, error) {
	env, err := c.do(ctx, http.MethodPost, c.url(table, fmt.Sprintf("records/%d/get", id)), map[string]any{
		"fields": fieldProjection(q.Fields),
	})
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("apper: record %d: %w", id, domain.ErrNotFound)
	}
	var rec domain.Record
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return nil, fmt.Errorf("apper: decode record: %w", err)
	}
	return rec, nil
}

func (c *Client) Create(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	env, err := c.do(ctx, http.MethodPost, c.url(table, "records"), map[string]any{"records": records})
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (c *Client) Update(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	env, err := c.do(ctx, http.MethodPatch, c.url(table, "records"), map[string]any{"records": records})
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (c *Client) Delete(ctx context.Context, table string, ids []int) ([]domain.WriteResult, error) {
	env, err := c.do(ctx, http.MethodDelete, c.url(table, "records"), map[string]any{"RecordIds": ids})
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

/********** wire shapes **********/

func (c *Client) url(table, op string) string {
	return fmt.Sprintf("%s/tables/%s/%s", c.base, table, op)
}

// fieldProjection wraps the projected names the way the record API expects:
// a list of {"field": {"Name": ...}} objects.
func fieldProjection(fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, map[string]any{"field": map[string]any{"Name": f}})
	}
	return out
}

func fetchBody(q domain.Query) map[string]any {
	body := map[string]any{"fields": fieldProjection(q.Fields)}
	if len(q.Where) > 0 {
		body["where"] = q.Where
	}
	if len(q.WhereGroups) > 0 {
		body["whereGroups"] = q.WhereGroups
	}
	if len(q.OrderBy) > 0 {
		orderBy := make([]map[string]any, 0, len(q.OrderBy))
		for _, srt := range q.OrderBy {
			dir := "ASC"
			if srt.Desc {
				dir = "DESC"
			}
			orderBy = append(orderBy, map[string]any{"fieldName": srt.Field, "sorttype": dir})
		}
		body["orderBy"] = orderBy
	}
	if q.Limit > 0 || q.Offset > 0 {
		body["pagingInfo"] = map[string]any{"limit": q.Limit, "offset": q.Offset}
	}
	return body
}

/********** transport **********/

// do performs one logical call with rate limiting, retries on 429 and
// transient 5xx (honoring Retry-After), and envelope decoding. A decoded
// envelope with success=false becomes a RemoteError.
func (c *Client) do(ctx context.Context, method, url string, body any) (*envelope, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("apper: encode request: %w", err)
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Apper-Project-Id", c.projectID)
		req.Header.Set("X-Apper-Public-Key", c.publicKey)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("apper", method+" "+url, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			var env envelope
			err := json.NewDecoder(resp.Body).Decode(&env)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("apper: decode envelope: %w", err)
			}
			if !env.Success {
				msg := env.Message
				if msg == "" {
					msg = "request failed"
				}
				return nil, &RemoteError{Message: msg}
			}
			return &env, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, fmt.Errorf("apper: %s: %w", url, domain.ErrNotFound)

		case http.StatusUnauthorized, http.StatusForbidden:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("apper: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("apper: remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("apper: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles per attempt (200ms, 400ms, 800ms...) with up to +50%
// concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
