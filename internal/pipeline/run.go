package pipeline

import (
	"context"
	"fmt"

	"depotkit/internal/appid"
	"depotkit/internal/archive"
	"depotkit/internal/depot"
	"depotkit/internal/history"
	"depotkit/internal/region"
	"depotkit/internal/steamcfg"
	"depotkit/internal/steamproc"
	"depotkit/internal/synth"
	"depotkit/internal/unlocker"
)

// ItemResult is the contained outcome of one identifier.
type ItemResult struct {
	AppID     string
	Status    string
	Detail    string
	Keys      int
	Manifests int
}

// Summary tallies one batch run.
type Summary struct {
	RunID     string
	Region    region.Region
	Results   []ItemResult
	Succeeded int
	Failed    int
}

// Run processes a batch of raw inputs against one source. The source is
// "auto" (rank every configured repo), an archive endpoint name, or an
// explicit "owner/repo" reference.
func (p *Pipeline) Run(ctx context.Context, inputs []string, source string) (*Summary, error) {
	ids := appid.Resolve(inputs, p.logger)
	if len(ids) == 0 {
		return nil, ErrNoIdentifiers
	}
	p.logger.Info("resolved identifiers", "count", len(ids), "source", source)

	archiveSrc, isArchive := archive.SourceByName(source)

	reg := p.resolveRegion(ctx)
	if !isArchive {
		if !p.github.CheckRateLimit(ctx) {
			return nil, ErrRateLimited
		}
	}

	summary := &Summary{Region: reg}
	if p.store != nil {
		runID, err := p.store.BeginRun(ctx, p.mode.String(), reg.String(), source)
		if err != nil {
			p.logger.Warn("history unavailable for this run", "error", err)
		} else {
			summary.RunID = runID
		}
	}

	for _, id := range ids {
		var err error
		var item ItemResult
		if isArchive {
			item, err = p.processArchive(ctx, archiveSrc, id)
		} else {
			item, err = p.processFromRepos(ctx, id, source, reg)
		}
		item.AppID = id
		item.Status = statusOf(err)
		item.Detail = describe(err)
		if err != nil {
			p.logger.Error("identifier failed", "app_id", id, "error", err)
			summary.Failed++
		} else {
			p.logger.Info("identifier processed", "app_id", id, "keys", item.Keys, "manifests", item.Manifests)
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, item)
		p.recordItem(ctx, summary.RunID, item)
	}

	p.finishRun(ctx, summary.RunID)

	if summary.Succeeded > 0 && p.cfg.Unlocker.AutoRestartSteam {
		if err := steamproc.Restart(ctx, p.launcher, p.layout.Root, p.logger); err != nil {
			p.logger.Warn("steam restart failed", "error", err)
		}
	}
	return summary, nil
}

func (p *Pipeline) recordItem(ctx context.Context, runID string, item ItemResult) {
	if p.store == nil || runID == "" {
		return
	}
	err := p.store.RecordItem(ctx, runID, history.Item{
		AppID:         item.AppID,
		Status:        item.Status,
		Detail:        item.Detail,
		KeyCount:      item.Keys,
		ManifestCount: item.Manifests,
	})
	if err != nil {
		p.logger.Warn("failed to record run item", "error", err)
	}
}

func (p *Pipeline) finishRun(ctx context.Context, runID string) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.FinishRun(ctx, runID); err != nil {
		p.logger.Warn("failed to finalize run record", "error", err)
	}
}

// processArchive retrieves one identifier's artifacts from a static archive
// endpoint and synthesizes unlock artifacts from them.
func (p *Pipeline) processArchive(ctx context.Context, src archive.Source, appID string) (ItemResult, error) {
	payload, err := p.engine.Fetch(ctx, src, appID)
	if err != nil {
		return ItemResult{}, err
	}
	defer payload.Close()
	return p.synthesize(appID, payload.ManifestPaths, payload.Manifests, payload.Keys)
}

// synthesize installs artifacts for the active unlock mechanism.
func (p *Pipeline) synthesize(appID string, manifestPaths []string, refs []depot.ManifestRef, keys *depot.KeySet) (ItemResult, error) {
	item := ItemResult{Manifests: len(refs)}
	if keys != nil {
		item.Keys = keys.Len()
	}

	switch p.mode {
	case unlocker.ScriptBased:
		if !unlocker.SkipManifestDownloads(p.mode, p.cfg.Unlocker.AutoUpdateOnly) {
			if err := synth.InstallScriptManifests(manifestPaths, p.layout); err != nil {
				return item, err
			}
		}
		dest, err := synth.WriteScript(synth.ScriptInput{
			AppID:     appID,
			Keys:      keys,
			Manifests: refs,
			Policy:    p.policy,
		}, p.layout)
		if err != nil {
			return item, err
		}
		p.logger.Info("unlock script installed", "app_id", appID, "script", dest)
		return item, nil

	case unlocker.FileDropBased:
		err := synth.InstallFileDrop(synth.FileDropInput{
			AppID:         appID,
			ManifestPaths: manifestPaths,
			Keys:          keys,
		}, p.layout)
		if err != nil {
			return item, err
		}
		steamcfg.MergeKeys(p.layout.ConfigVDFPath(), keys, p.logger)
		p.logger.Info("file-drop artifacts installed", "app_id", appID, "manifests", len(manifestPaths))
		return item, nil

	default:
		return item, fmt.Errorf("cannot synthesize for mode %q", p.mode)
	}
}
