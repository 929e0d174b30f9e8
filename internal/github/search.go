package github

import (
	"context"
	"errors"
)

// SearchAll queries every repo for appID without stopping at the first hit.
// Rate-limit errors abort the remaining repos; other failures only skip
// the repo at hand.
func (c *Client) SearchAll(ctx context.Context, appID string, repos []string) []*RepoResult {
	results := make([]*RepoResult, 0, len(repos))
	for _, repo := range repos {
		c.logger.Info("searching repo", "repo", repo, "app_id", appID)
		result, err := c.Lookup(ctx, repo, appID)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				break
			}
			continue
		}
		c.logger.Info("found manifest branch", "repo", repo, "updated", result.UpdatedAt)
		results = append(results, result)
	}
	return results
}

// Best selects the result with the most recent update timestamp. Ties keep
// the earlier (input-order) result. Returns nil for an empty slice.
func Best(results []*RepoResult) *RepoResult {
	var best *RepoResult
	for _, r := range results {
		if best == nil || r.UpdatedAt.After(best.UpdatedAt) {
			best = r
		}
	}
	return best
}
