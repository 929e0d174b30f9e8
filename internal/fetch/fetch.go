package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"depotkit/internal/region"
)

// ErrAllSourcesFailed marks exhaustion of the candidate URL chain.
var ErrAllSourcesFailed = errors.New("all download sources failed")

const (
	mirrorPrimaryPattern  = "https://cdn.jsdmirror.com/gh/%s@%s/%s"
	mirrorFallbackPattern = "https://raw.gitmirror.com/%s/%s/%s"
	directPattern         = "https://raw.githubusercontent.com/%s/%s/%s"
)

// Fetcher retrieves raw repository files with region-aware mirror fallback.
type Fetcher struct {
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration

	// candidateOverride replaces the built-in URL chain in tests.
	candidateOverride func(repo, ref, path string, r region.Region) []string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default pooled HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithCandidates overrides candidate URL construction (tests only).
func WithCandidates(fn func(repo, ref, path string, r region.Region) []string) Option {
	return func(f *Fetcher) { f.candidateOverride = fn }
}

// New builds a Fetcher with a fixed per-request timeout.
func New(timeout time.Duration, logger *slog.Logger, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &Fetcher{
		client:  &http.Client{},
		logger:  logger,
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Candidates returns the ordered URL chain for one file.
func Candidates(repo, ref, path string, r region.Region) []string {
	if r == region.Mirror {
		return []string{
			fmt.Sprintf(mirrorPrimaryPattern, repo, ref, path),
			fmt.Sprintf(mirrorFallbackPattern, repo, ref, path),
		}
	}
	return []string{fmt.Sprintf(directPattern, repo, ref, path)}
}

// Content downloads one repository file, trying each candidate URL in order
// and returning the first 200 response's bytes. Every candidate failing
// yields an aggregated error wrapping ErrAllSourcesFailed.
func (f *Fetcher) Content(ctx context.Context, repo, ref, path string, r region.Region) ([]byte, error) {
	candidates := Candidates(repo, ref, path, r)
	if f.candidateOverride != nil {
		candidates = f.candidateOverride(repo, ref, path, r)
	}

	var failures []error
	for _, candidate := range candidates {
		data, err := f.tryOne(ctx, candidate)
		if err == nil {
			return data, nil
		}
		f.logger.Warn("download failed, trying next source",
			"path", path, "host", hostOf(candidate), "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", hostOf(candidate), err))
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrAllSourcesFailed, path, errors.Join(failures...))
}

func (f *Fetcher) tryOne(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
