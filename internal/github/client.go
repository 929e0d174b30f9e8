package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrNotFound means the app id has no branch in the queried repo.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited means the API quota is exhausted.
	ErrRateLimited = errors.New("api rate limited")
)

// TreeEntry is one file in a branch tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// RepoResult captures one repository's answer for an app id. It lives only
// long enough to rank sources and short-circuit the tree engine.
type RepoResult struct {
	Repo      string
	SHA       string
	Tree      []TreeEntry
	UpdatedAt time.Time
}

// Client accesses the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an API client. token may be empty (unauthenticated access).
func New(baseURL, token string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, url string, payload any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, url)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type branchResponse struct {
	Commit struct {
		SHA    string `json:"sha"`
		Commit struct {
			Tree struct {
				URL string `json:"url"`
			} `json:"tree"`
			Author struct {
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	} `json:"commit"`
}

type treeResponse struct {
	Tree []TreeEntry `json:"tree"`
}

// Lookup resolves the branch named after appID in repo to its commit and
// full tree listing (two sequential API calls).
func (c *Client) Lookup(ctx context.Context, repo, appID string) (*RepoResult, error) {
	branchURL := fmt.Sprintf("%s/repos/%s/branches/%s", c.baseURL, repo, appID)
	var branch branchResponse
	if err := c.get(ctx, branchURL, &branch); err != nil {
		return nil, c.classify(err, repo, appID)
	}

	var tree treeResponse
	if err := c.get(ctx, branch.Commit.Commit.Tree.URL, &tree); err != nil {
		return nil, c.classify(err, repo, appID)
	}

	return &RepoResult{
		Repo:      repo,
		SHA:       branch.Commit.SHA,
		Tree:      tree.Tree,
		UpdatedAt: branch.Commit.Commit.Author.Date,
	}, nil
}

func (c *Client) classify(err error, repo, appID string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		c.logger.Warn("app id has no branch in repo; check the id and repo selection",
			"repo", repo, "app_id", appID)
	case errors.Is(err, ErrRateLimited):
		c.logger.Error("API rate limit hit; configure a token or retry later",
			"repo", repo, "app_id", appID)
	default:
		c.logger.Error("repo query failed", "repo", repo, "app_id", appID, "error", err)
	}
	return err
}

type rateLimitResponse struct {
	Resources struct {
		Core struct {
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
	} `json:"resources"`
}

// CheckRateLimit reports whether the API has request quota left. A false
// return aborts the calling batch; errors count as no quota.
func (c *Client) CheckRateLimit(ctx context.Context) bool {
	if c.token == "" {
		c.logger.Warn("no API token configured; request quota is limited")
	}
	var payload rateLimitResponse
	if err := c.get(ctx, c.baseURL+"/rate_limit", &payload); err != nil {
		c.logger.Error("rate limit check failed", "error", err)
		return false
	}
	core := payload.Resources.Core
	if core.Remaining == 0 {
		reset := time.Unix(core.Reset, 0)
		c.logger.Warn("API quota exhausted", "resets_at", reset.Format(time.RFC3339))
		return false
	}
	c.logger.Info("API quota available", "remaining", core.Remaining)
	return true
}
