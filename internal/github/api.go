// Package github lists the repositories of a GitHub organization, either
// through the gh CLI or through the REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

const (
	apiBaseURL = "https://api.github.com"
	userAgent  = "go-gitbackup/1.0"

	// maxPerPage is the largest page size the REST API accepts.
	maxPerPage = 100
)

// Client handles GitHub API operations
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string // Allow custom base URL for testing
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a GitHub API client. An empty token makes anonymous
// requests, which only see public repositories.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		baseURL:    apiBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiRepository is the subset of the REST repository object we read.
type apiRepository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// ListOrgRepositories returns up to limit repositories owned by owner, in
// the order the API returns them. Owners that are users rather than
// organizations are supported as well, matching `gh repo list`.
func (c *Client) ListOrgRepositories(ctx context.Context, owner string, limit int) ([]repo.Repository, error) {
	repos := make([]repo.Repository, 0, min(limit, maxPerPage))
	if limit <= 0 {
		return repos, nil
	}

	// page size stays fixed so page offsets line up; the tail is trimmed below
	perPage := min(limit, maxPerPage)
	scope := "orgs"
	for page := 1; len(repos) < limit; page++ {
		batch, err := c.listPage(ctx, scope, owner, page, perPage)
		if errors.IsNotFound(err) && scope == "orgs" && page == 1 {
			scope = "users"
			batch, err = c.listPage(ctx, scope, owner, page, perPage)
		}
		if err != nil {
			return nil, err
		}

		for _, r := range batch {
			repos = append(repos, repo.Repository{Name: r.Name, NameWithOwner: r.FullName})
		}
		if len(batch) < perPage {
			break
		}
	}

	if len(repos) > limit {
		repos = repos[:limit]
	}
	if err := repo.ValidateAll(owner, repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (c *Client) listPage(ctx context.Context, scope, owner string, page, perPage int) ([]apiRepository, error) {
	u := fmt.Sprintf("%s/%s/%s/repos?per_page=%d&page=%d&sort=full_name",
		c.baseURL, scope, url.PathEscape(owner), perPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &errors.ListError{Organization: owner, Err: err}
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, &errors.ListError{Organization: owner, Err: err}
	}
	defer resp.Body.Close()

	var batch []apiRepository
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, &errors.DecodeError{Organization: owner, Err: err}
	}
	return batch, nil
}

// sendRequest sends an HTTP request with the necessary headers
func (c *Client) sendRequest(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("list", "request failed", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		var apiErr struct {
			Message string `json:"message"`
		}
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}

		status := resp.StatusCode
		if status == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			status = http.StatusTooManyRequests
		}
		return nil, errors.NewAPIHTTPError("list", status, message)
	}

	return resp, nil
}
