package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"depotkit/internal/archive"
	"depotkit/internal/config"
	"depotkit/internal/fetch"
	"depotkit/internal/github"
	"depotkit/internal/history"
	"depotkit/internal/region"
	"depotkit/internal/steamproc"
	"depotkit/internal/unlocker"
)

// ErrNoIdentifiers is returned when no input resolves to an app id.
var ErrNoIdentifiers = errors.New("no valid identifiers to process")

// ErrUndetermined is returned when no unlock mechanism was detected and no
// override is configured.
var ErrUndetermined = errors.New("no unlock mechanism detected; set unlocker.force to \"script\" or \"filedrop\"")

// ErrRateLimited aborts a GitHub batch before it starts.
var ErrRateLimited = errors.New("github api rate limit exhausted")

// Pipeline holds the collaborators for one batch run.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	layout   unlocker.Layout
	mode     unlocker.Mode
	policy   unlocker.VersionPolicy
	github   *github.Client
	fetcher  *fetch.Fetcher
	detector *region.Detector
	engine   *archive.Engine
	launcher steamproc.Launcher
	store    *history.Store
}

// Option substitutes a collaborator, primarily for tests.
type Option func(*Pipeline)

func WithGitHubClient(c *github.Client) Option   { return func(p *Pipeline) { p.github = c } }
func WithFetcher(f *fetch.Fetcher) Option        { return func(p *Pipeline) { p.fetcher = f } }
func WithDetector(d *region.Detector) Option     { return func(p *Pipeline) { p.detector = d } }
func WithArchiveEngine(e *archive.Engine) Option { return func(p *Pipeline) { p.engine = e } }
func WithLauncher(l steamproc.Launcher) Option   { return func(p *Pipeline) { p.launcher = l } }
func WithHistoryStore(s *history.Store) Option   { return func(p *Pipeline) { p.store = s } }

// New resolves the Steam install, detects the unlock mechanism, and wires
// default collaborators. Conflict detection fails construction outright.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	root, err := unlocker.ResolveRoot(cfg.Paths.SteamPath)
	if err != nil {
		return nil, err
	}

	mode := unlocker.DetectMode(root)
	switch mode {
	case unlocker.Conflict:
		return nil, unlocker.ErrConflict
	case unlocker.Undetermined:
		switch cfg.Unlocker.Force {
		case "script":
			mode = unlocker.ScriptBased
		case "filedrop":
			mode = unlocker.FileDropBased
		default:
			return nil, ErrUndetermined
		}
		logger.Info("unlock mechanism forced by config", "mode", mode.String())
	default:
		logger.Info("unlock mechanism detected", "mode", mode.String(), "steam_root", root)
	}

	timeout := time.Duration(cfg.Network.RequestTimeout) * time.Second
	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		layout:   unlocker.Layout{Root: root},
		mode:     mode,
		policy:   unlocker.PolicyFor(mode, cfg.Unlocker.AutoUpdateOnly, cfg.Unlocker.LockManifestVersion),
		github:   github.New(cfg.GitHub.APIBaseURL, cfg.GitHub.Token, logger),
		fetcher:  fetch.New(timeout, logger),
		detector: region.NewDetector(cfg.Network.RegionProbeURL, nil, logger),
		engine:   archive.NewEngine(cfg.Paths.ScratchDir, timeout, logger),
		launcher: steamproc.ExecLauncher{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Mode reports the unlock mechanism the pipeline will synthesize for.
func (p *Pipeline) Mode() unlocker.Mode { return p.mode }

// resolveRegion applies the mirror preference, probing only in auto mode.
func (p *Pipeline) resolveRegion(ctx context.Context) region.Region {
	switch p.cfg.Network.PreferMirrors {
	case "always":
		return region.Mirror
	case "never":
		return region.Direct
	default:
		return p.detector.Detect(ctx)
	}
}

func statusOf(err error) string {
	if err == nil {
		return history.StatusOK
	}
	return history.StatusFailed
}

func describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
