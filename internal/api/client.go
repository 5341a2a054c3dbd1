// Package api contains HTTP clients for the platform collaborators the
// setup engine drives: tenant settings, schools, classes/sections, academic
// levels, and users. All collaborators speak JSON wrapped in a
// {data, meta, error} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
)

// Sentinel errors for collaborator calls.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRemote       = errors.New("remote call failed")
)

// RemoteError carries the collaborator's status code and human message for a
// failed call. It wraps ErrRemote (or ErrNotFound/ErrUnauthorized for their
// status codes) so callers can branch with errors.Is.
type RemoteError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote error (%d)", e.Status)
}

// Unwrap maps status codes onto the package sentinels.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrRemote
	}
}

// HumanMessage returns the collaborator-provided message, or the fallback
// when the collaborator did not provide one.
func (e *RemoteError) HumanMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// envelope is the wire wrapper every collaborator response uses.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta,omitempty"`
	Error *envelopeError  `json:"error,omitempty"`
}

type envelopeError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Config configures the base collaborator client.
type Config struct {
	// BaseURL is the collaborator API root, without a trailing slash.
	BaseURL string

	// Token is the bearer token attached to every request. The setup engine
	// never mints tokens; the host application supplies one.
	Token string

	// HTTPClient overrides the default caching client. Mutating requests
	// bypass the cache regardless.
	HTTPClient *http.Client

	// MaxGetTries bounds retry attempts for idempotent GETs. Zero means the
	// default of 3. Mutating calls are never retried.
	MaxGetTries int

	Logger zerolog.Logger
}

// Client is the base JSON client shared by the typed collaborator wrappers.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	maxGetTries int
	log         zerolog.Logger
}

// New creates a collaborator client. When no HTTP client is supplied it uses
// an in-memory caching transport so repeated GETs honor the collaborators'
// Cache-Control headers.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
			Timeout:   30 * time.Second,
		}
	}
	tries := cfg.MaxGetTries
	if tries <= 0 {
		tries = 3
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		httpClient:  httpClient,
		maxGetTries: tries,
		log:         cfg.Logger,
	}
}

// get issues a GET and decodes the envelope data into out. Transient
// failures (5xx, transport errors) are retried with exponential backoff;
// 4xx responses are permanent.
func (c *Client) get(ctx context.Context, path string, out any) error {
	op := func() (struct{}, error) {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err != nil {
			var remote *RemoteError
			if errors.As(err, &remote) && remote.Status < 500 {
				return struct{}{}, backoff.Permanent(err)
			}
		}
		return struct{}{}, err
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.maxGetTries)),
	)
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %s", ErrRemote, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("collaborator call")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %s", ErrRemote, err)
	}

	if resp.StatusCode >= 400 {
		return &RemoteError{Status: resp.StatusCode, Message: decodeErrorMessage(raw)}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decoding envelope: %s", ErrRemote, err)
	}
	if env.Error != nil && env.Error.Message != "" {
		return &RemoteError{Status: resp.StatusCode, Message: env.Error.Message}
	}
	data := env.Data
	if len(data) == 0 {
		// Some collaborators return bare bodies without the envelope.
		data = raw
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %s", ErrRemote, err)
	}
	return nil
}

// decodeErrorMessage pulls a human message out of an error body, tolerating
// both enveloped and bare {message} shapes.
func decodeErrorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return env.Error.Message
	}
	var bare struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare.Message
	}
	return ""
}
