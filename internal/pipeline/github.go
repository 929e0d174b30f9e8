package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"depotkit/internal/depot"
	"depotkit/internal/github"
	"depotkit/internal/region"
	"depotkit/internal/unlocker"
)

// treeFetchConcurrency caps parallel file downloads per identifier.
const treeFetchConcurrency = 4

// processFromRepos resolves which manifest repository serves the identifier
// and runs the tree engine against it. An "auto" source ranks every
// configured repo by branch freshness; anything else is an explicit repo.
func (p *Pipeline) processFromRepos(ctx context.Context, appID, source string, reg region.Region) (ItemResult, error) {
	var result *github.RepoResult
	if source == "" || source == "auto" {
		results := p.github.SearchAll(ctx, appID, p.cfg.GitHub.Repos)
		result = github.Best(results)
		if result == nil {
			return ItemResult{}, fmt.Errorf("%w: app %s in any configured repo", github.ErrNotFound, appID)
		}
		p.logger.Info("selected manifest repo",
			"app_id", appID, "repo", result.Repo, "updated", result.UpdatedAt)
	} else {
		var err error
		result, err = p.github.Lookup(ctx, source, appID)
		if err != nil {
			return ItemResult{}, err
		}
	}
	return p.processGitHub(ctx, appID, result, reg)
}

// processGitHub downloads the relevant tree entries and synthesizes unlock
// artifacts. Manifest blobs are skipped entirely in auto-update mode; their
// pin directives come from the entry names alone.
func (p *Pipeline) processGitHub(ctx context.Context, appID string, res *github.RepoResult, reg region.Region) (ItemResult, error) {
	skipManifests := unlocker.SkipManifestDownloads(p.mode, p.cfg.Unlocker.AutoUpdateOnly)

	var refs []depot.ManifestRef
	var wanted []github.TreeEntry
	for _, entry := range res.Tree {
		if entry.Type != "blob" {
			continue
		}
		switch depot.Classify(entry.Path) {
		case depot.KindManifest:
			if ref, ok := depot.ParseManifestName(entry.Path); ok {
				refs = append(refs, ref)
			}
			if !skipManifests {
				wanted = append(wanted, entry)
			}
		case depot.KindKeyConfig:
			wanted = append(wanted, entry)
		case depot.KindContainer, depot.KindScript, depot.KindOther:
			// Manifest repos ship keys as key.vdf; anything else is noise here.
		}
	}

	workDir := filepath.Join(p.cfg.Paths.ScratchDir, "gh-"+appID)
	if err := os.RemoveAll(workDir); err != nil {
		return ItemResult{}, fmt.Errorf("clear scratch: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return ItemResult{}, fmt.Errorf("create scratch: %w", err)
	}
	defer os.RemoveAll(workDir)

	downloaded, err := p.fetchEntries(ctx, res, wanted, workDir, reg)
	if err != nil {
		return ItemResult{}, err
	}

	keys := depot.NewKeySet()
	var manifestPaths []string
	for _, local := range downloaded {
		switch depot.Classify(local) {
		case depot.KindManifest:
			manifestPaths = append(manifestPaths, local)
		case depot.KindKeyConfig:
			raw, err := os.ReadFile(local)
			if err != nil {
				return ItemResult{}, fmt.Errorf("read key config: %w", err)
			}
			set, err := depot.ParseKeyConfig(raw)
			if err != nil {
				return ItemResult{}, err
			}
			keys.Merge(set)
		}
	}
	return p.synthesize(appID, manifestPaths, refs, keys)
}

// fetchEntries downloads tree entries concurrently. Under the fail-fast
// policy the first failure cancels the group and fails the identifier;
// best-effort logs failures and keeps whatever arrived.
func (p *Pipeline) fetchEntries(ctx context.Context, res *github.RepoResult, entries []github.TreeEntry, workDir string, reg region.Region) ([]string, error) {
	bestEffort := p.cfg.Network.TreeFetchPolicy == "best_effort"

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(treeFetchConcurrency)

	var mu sync.Mutex
	var local []string
	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			data, err := p.fetcher.Content(groupCtx, res.Repo, res.SHA, entry.Path, reg)
			if err != nil {
				if bestEffort {
					p.logger.Warn("skipping unavailable file", "path", entry.Path, "error", err)
					return nil
				}
				return err
			}
			dest := filepath.Join(workDir, path.Base(entry.Path))
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", entry.Path, err)
			}
			mu.Lock()
			local = append(local, dest)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return local, nil
}
