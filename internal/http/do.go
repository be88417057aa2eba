package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxErrorBody bounds how much of a non-2xx body is kept in an error.
const maxErrorBody = 64 * 1024

// Do executes req and returns the raw 2xx response.
func (c *Client) Do(ctx context.Context, req anytype.Request) (*Response, error) {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	c.metrics.RecordSuccess(len(resp.Body))

	return resp, nil
}

// Get executes a GET for path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query []anytype.QueryParam) (*Response, error) {
	req := anytype.Get(path)
	req.Query = query

	return c.Do(ctx, req)
}

// execute runs the attempt loop. It records attempts, retries, rate limits
// and terminal errors; the caller records success once the body is accepted.
func (c *Client) execute(ctx context.Context, req anytype.Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "anytype.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		))
	defer span.End()

	resp, attempts, err := c.attemptLoop(ctx, req)

	span.SetAttributes(attribute.Int("anytype.attempts", attempts))

	if status := statusOf(resp, err); status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, anytype.KindOf(err).String())
	}

	return resp, err
}

func (c *Client) attemptLoop(ctx context.Context, req anytype.Request) (*Response, int, error) {
	err := c.preflight(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	fullURL := c.buildURL(req)
	attempt := 0
	rateLimitRetries := 0
	total := 0

	for {
		if c.limiter != nil {
			err = c.limiter.Wait(ctx)
			if err != nil {
				return nil, total, c.fail(req, &anytype.Error{Kind: anytype.KindHTTP, Err: err})
			}
		}

		total++
		c.metrics.RecordAttempt(len(req.Body))

		httpResp, err := c.send(ctx, req, fullURL)
		if err != nil {
			retryable := req.IsIdempotent() && isTransient(ctx, err)
			if retryable && attempt < c.retryMax {
				err = c.backoff(ctx, req, attempt, err.Error())
				if err != nil {
					return nil, total, c.fail(req, &anytype.Error{Kind: anytype.KindHTTP, Err: err})
				}

				attempt++

				continue
			}

			return nil, total, c.failTransport(req, err, retryable, attempt)
		}

		if httpResp.StatusCode != http.StatusTooManyRequests {
			rateLimitRetries = 0
		}

		switch {
		case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
			resp, err := c.readSuccess(req, httpResp)
			if err != nil {
				return nil, total, err
			}

			return resp, total, nil

		case httpResp.StatusCode == http.StatusTooManyRequests:
			c.metrics.RecordRateLimited()
			rateLimitRetries++

			header, wait, err := parseRetryAfter(httpResp.Header)
			drain(httpResp)

			if err != nil {
				c.logger.Error("rate limit response without usable wait header", c.fields(req, map[string]interface{}{
					"status": httpResp.StatusCode,
				}))

				return nil, total, withRequest(req, err)
			}

			if c.rateLimitMaxRetries > 0 && rateLimitRetries > c.rateLimitMaxRetries {
				c.logger.Error("rate limit retries exceeded", c.fields(req, map[string]interface{}{
					"max": c.rateLimitMaxRetries,
				}))

				return nil, total, rateLimitExceeded(req, header, wait, "retries exceeded")
			}

			if wait > c.rateLimitWaitMax {
				c.logger.Error("rate limit wait exceeds maximum", c.fields(req, map[string]interface{}{
					"wait": wait.String(),
				}))

				return nil, total, rateLimitExceeded(req, header, wait, "wait exceeds maximum")
			}

			if wait > constants.RateLimitWaitWarn {
				c.logger.Warn("rate limited", c.fields(req, map[string]interface{}{"wait": wait.String()}))
			} else {
				c.logger.Info("rate limited", c.fields(req, map[string]interface{}{"wait": wait.String()}))
			}

			c.metrics.RecordRetry()
			c.metrics.RecordRateLimitDelay(uint64(wait.Seconds()))

			err = c.sleep(ctx, wait)
			if err != nil {
				return nil, total, c.fail(req, &anytype.Error{Kind: anytype.KindHTTP, Err: err})
			}

			attempt = 0

		default:
			body := readErrorBody(httpResp)

			if req.IsIdempotent() && isRetryableStatus(httpResp.StatusCode) && attempt < c.retryMax {
				err = c.backoff(ctx, req, attempt, httpResp.Status)
				if err != nil {
					return nil, total, c.fail(req, &anytype.Error{Kind: anytype.KindHTTP, Err: err})
				}

				attempt++

				continue
			}

			return nil, total, c.failStatus(req, fullURL, httpResp.StatusCode, body, attempt)
		}
	}
}

// preflight rejects requests that must not reach the network.
func (c *Client) preflight(ctx context.Context, req anytype.Request) error {
	if !req.Unauthenticated {
		if _, ok := c.credentials.Get(ctx); !ok {
			return &anytype.Error{
				Kind:    anytype.KindAuth,
				Method:  req.Method,
				Path:    req.Path,
				Message: "API key not set",
				Err:     anytype.ErrNoCredential,
			}
		}
	}

	err := c.limits.ValidateRequest(req)
	if err != nil {
		return withRequest(req, err)
	}

	return nil
}

func (c *Client) buildURL(req anytype.Request) string {
	fullURL := c.baseURL + req.Path
	if query := req.EncodeQuery(); query != "" {
		fullURL += "?" + query
	}

	return fullURL
}

// send performs one attempt. The credential is read per attempt so a key
// replaced between retries takes effect.
func (c *Client) send(ctx context.Context, req anytype.Request, fullURL string) (*http.Response, error) {
	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set(constants.APIVersionHeader, constants.APIVersion)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.Unauthenticated {
		if key, ok := c.credentials.Get(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+key)
		}
	}

	if c.debug {
		c.logger.Debug("HTTP Request Body", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"body":   string(req.Body),
		})
	}

	return c.httpClient.Do(httpReq)
}

// readSuccess reads a 2xx body. A read failure is terminal: the service may
// already have applied the request.
func (c *Client) readSuccess(req anytype.Request, httpResp *http.Response) (*Response, error) {
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.fail(req, &anytype.Error{
			Kind:       anytype.KindHTTP,
			StatusCode: httpResp.StatusCode,
			Message:    "reading response body",
			Err:        err,
		})
	}

	if c.debug {
		c.logger.Debug("HTTP Response Body", map[string]interface{}{
			"path":   req.Path,
			"status": httpResp.StatusCode,
			"body":   string(body),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) failStatus(req anytype.Request, fullURL string, status int, body string, attempt int) error {
	apiErr := &anytype.Error{StatusCode: status, Body: body, URL: fullURL}

	switch status {
	case http.StatusBadRequest:
		apiErr.Kind = anytype.KindValidation
	case http.StatusNotFound, http.StatusGone:
		apiErr.Kind = anytype.KindNotFound
	case http.StatusUnauthorized:
		apiErr.Kind = anytype.KindUnauthorized
	case http.StatusForbidden:
		apiErr.Kind = anytype.KindForbidden
	default:
		apiErr.Kind = anytype.KindAPI
	}

	if apiErr.Kind == anytype.KindAPI && attempt > 0 && isRetryableStatus(status) {
		return c.fail(req, tooManyRetries(req, attempt, withRequest(req, apiErr)))
	}

	return c.fail(req, apiErr)
}

func (c *Client) failTransport(req anytype.Request, err error, retryable bool, attempt int) error {
	httpErr := &anytype.Error{Kind: anytype.KindHTTP, Err: err}

	if retryable && attempt > 0 {
		return c.fail(req, tooManyRetries(req, attempt, withRequest(req, httpErr)))
	}

	return c.fail(req, httpErr)
}

// fail records and logs a terminal error.
func (c *Client) fail(req anytype.Request, err *anytype.Error) error {
	c.metrics.RecordError()

	withRequest(req, err)

	fields := c.fields(req, map[string]interface{}{
		"kind":  err.Kind.String(),
		"error": err.Error(),
	})
	if status := anytype.StatusCode(err); status != 0 {
		fields["status"] = status
	}

	c.logger.Error("request failed", fields)

	return err
}

// fields builds log fields for req. Headers are never logged.
func (c *Client) fields(req anytype.Request, extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
	}

	for k, v := range extra {
		fields[k] = v
	}

	return fields
}

func withRequest(req anytype.Request, err error) *anytype.Error {
	apiErr, ok := err.(*anytype.Error)
	if !ok {
		apiErr = &anytype.Error{Kind: anytype.KindHTTP, Err: err}
	}

	if apiErr.Method == "" {
		apiErr.Method = req.Method
	}

	if apiErr.Path == "" {
		apiErr.Path = req.Path
	}

	return apiErr
}

func tooManyRetries(req anytype.Request, attempt int, cause *anytype.Error) *anytype.Error {
	return &anytype.Error{
		Kind:     anytype.KindTooManyRetries,
		Method:   req.Method,
		Path:     req.Path,
		Attempts: attempt + 1,
		Err:      cause,
	}
}

func rateLimitExceeded(req anytype.Request, header string, wait time.Duration, msg string) *anytype.Error {
	return &anytype.Error{
		Kind:       anytype.KindRateLimitExceeded,
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: http.StatusTooManyRequests,
		Header:     header,
		Wait:       wait,
		Message:    msg,
	}
}

func readErrorBody(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return string(body)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func statusOf(resp *Response, err error) int {
	if resp != nil {
		return resp.StatusCode
	}

	return anytype.StatusCode(err)
}
