package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds each HTTP request.
const DefaultTimeout = 30 * time.Second

// PerPage is the page size requested from the API.
const PerPage = 100

// Client wraps go-github with rate limiting and error mapping.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client that authenticates with token.
func NewClient(ctx context.Context, token string, perSecond float64) *Client {
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	tc.Timeout = DefaultTimeout
	return &Client{gh: gh.NewClient(tc), rateLimiter: NewRateLimiter(perSecond)}
}

// NewClientWithHTTPClient creates a client over httpClient against baseURL.
// An empty baseURL targets api.github.com.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, perSecond float64) (*Client, error) {
	c := gh.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		c.BaseURL = u
	}
	return &Client{gh: c, rateLimiter: NewRateLimiter(perSecond)}, nil
}

// ListComments returns one page of a repository's issue and pull request
// comments, oldest first, with the next page number (0 when none remain).
func (c *Client) ListComments(ctx context.Context, owner, repo string, page int) ([]*gh.IssueComment, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.IssueListCommentsOptions{
		Sort:        gh.Ptr("created"),
		Direction:   gh.Ptr("asc"),
		ListOptions: gh.ListOptions{Page: page, PerPage: PerPage},
	}
	comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, 0, opts)
	c.updateRateLimit(resp)
	if err != nil {
		return nil, 0, c.wrapError(err, "list comments")
	}
	return comments, resp.NextPage, nil
}

// GetRepository checks that the repository exists and is readable.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	c.updateRateLimit(resp)
	if err != nil {
		return nil, c.wrapError(err, "get repo")
	}
	return repository, nil
}

// RateLimiter returns the client's limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) updateRateLimit(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to package error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
