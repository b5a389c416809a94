// Package backend implements a read-only CredentialReader over the
// credential backend's REST API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialReader = (*Client)(nil)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 4 << 20
)

// ErrUnexpectedStatus is wrapped by every error caused by a non-2xx,
// non-404 backend response.
var ErrUnexpectedStatus = errors.New("unexpected backend status")

// Client reads credentials from the backend. Every request is sent with
// Cache-Control max-age=0, so the ETag cache only saves bandwidth and never
// answers from a stale copy.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	token   string
}

// NewClient creates a Client for baseURL with the transport stack:
//  1. httpcache (ETag-based conditional requests, in-memory)
//  2. http.DefaultTransport
func NewClient(baseURL, token string) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   defaultTimeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// Intended for tests that point at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL: unsupported scheme %q", u.Scheme)
	}

	return &Client{http: httpClient, baseURL: u, token: token}, nil
}

// GetByID fetches a credential by ID. Returns nil, nil on 404.
func (c *Client) GetByID(ctx context.Context, id string) (*model.Credential, error) {
	return c.getOne(ctx, "credentials", id)
}

// GetByCode fetches a credential by verification code. Returns nil, nil on 404.
func (c *Client) GetByCode(ctx context.Context, code string) (*model.Credential, error) {
	return c.getOne(ctx, "credentials", "by-code", code)
}

// GetByHash fetches a credential by verification hash. Returns nil, nil on 404.
func (c *Client) GetByHash(ctx context.Context, hash string) (*model.Credential, error) {
	return c.getOne(ctx, "credentials", "by-hash", hash)
}

// ListByLearner fetches every credential held by a learner. An unknown
// learner yields an empty slice. A record that cannot be decoded is still
// returned, in a form that fails model.Credential.Validate, so aggregation
// can exclude and report it without dropping the rest of the list.
func (c *Client) ListByLearner(ctx context.Context, learnerID string) ([]model.Credential, error) {
	var dtos []credentialDTO
	found, err := c.get(ctx, &dtos, "learners", learnerID, "credentials")
	if err != nil {
		return nil, fmt.Errorf("list credentials for learner %s: %w", learnerID, err)
	}

	creds := make([]model.Credential, 0, len(dtos))
	if !found {
		return creds, nil
	}
	for _, d := range dtos {
		cred, _ := d.decode()
		creds = append(creds, cred)
	}
	return creds, nil
}

func (c *Client) getOne(ctx context.Context, segments ...string) (*model.Credential, error) {
	var dto credentialDTO
	found, err := c.get(ctx, &dto, segments...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", strings.Join(segments[:len(segments)-1], "/"), err)
	}
	if !found {
		return nil, nil
	}

	cred, err := dto.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", dto.ID, err)
	}
	return &cred, nil
}

// get issues GET /api/v1/<segments...> and decodes the JSON body into out.
// It reports false on 404.
func (c *Client) get(ctx context.Context, out any, segments ...string) (bool, error) {
	raw := append([]string{"api", "v1"}, segments...)
	escaped := make([]string, len(raw))
	for i, seg := range raw {
		escaped[i] = url.PathEscape(seg)
	}
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.Join(raw, "/")
	endpoint.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "max-age=0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
