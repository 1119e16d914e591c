package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
	"golang.org/x/time/rate"
)

var emptyObject = json.RawMessage("{}")

// Request describes one call against the Web API.
type Request struct {
	Method string
	Path   string
	Token  string
	Query  url.Values
	Body   any
}

// Executor performs single-attempt JSON requests against the Web API.
type Executor struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewExecutor returns an executor rooted at baseURL. limiter may be nil.
func NewExecutor(baseURL string, client *http.Client, limiter *rate.Limiter, logger *log.Logger) *Executor {
	if client == nil {
		client = NewHTTPClient(5*time.Second, 5*time.Second)
	}
	return &Executor{
		baseURL: baseURL,
		client:  client,
		limiter: limiter,
		logger:  shared.ComponentLogger(logger, "spotify"),
	}
}

// NewHTTPClient bounds connection setup by connect and waiting for response headers by read.
func NewHTTPClient(connect, read time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connect}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: connect + read}
}

// NewLimiter returns a limiter allowing perSecond requests, or nil when pacing is disabled.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Do sends req and returns the JSON body, normalised to {} when empty or unparsable.
// Statuses of 400 and above fail with ErrGateway, except 401 which fails with
// ErrUnauthorized so callers prompt for a new login. The request is never retried.
func (e *Executor) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, gatewayError(0, err.Error(), err)
		}
	}

	httpReq, err := e.build(ctx, req)
	if err != nil {
		return nil, gatewayError(0, err.Error(), err)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.logger.Debug("request failed", "method", httpReq.Method, "path", req.Path, "err", err)
		return nil, gatewayError(0, err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gatewayError(resp.StatusCode, err.Error(), err)
	}
	e.logger.Debug("request", "method", httpReq.Method, "path", req.Path, "status", resp.StatusCode, "took", time.Since(start))

	body := normalizeBody(data)
	if resp.StatusCode >= 400 {
		msg := providerMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: msg}
		}
		return nil, gatewayError(resp.StatusCode, msg, nil)
	}
	return body, nil
}

func (e *Executor) build(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := e.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func normalizeBody(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyObject
	}
	return json.RawMessage(trimmed)
}

// decode unmarshals raw into T. An empty object decodes to the zero value.
func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if bytes.Equal(raw, emptyObject) {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, gatewayError(0, "failed to decode response: "+err.Error(), err)
	}
	return v, nil
}
