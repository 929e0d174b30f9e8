package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"depotkit/internal/container"
	"depotkit/internal/depot"
)

// ErrDownload marks a failed archive download.
var ErrDownload = errors.New("archive download failed")

// ErrUnsafePath marks a zip entry that would escape the extraction root.
var ErrUnsafePath = errors.New("zip entry escapes extraction root")

// Payload is the harvested content of one archive. Close removes the
// scratch directory; call it after the manifests have been installed.
type Payload struct {
	Dir           string
	ManifestPaths []string
	Manifests     []depot.ManifestRef
	Keys          *depot.KeySet
}

// Close wipes the payload's scratch directory.
func (p *Payload) Close() error {
	if p == nil || p.Dir == "" {
		return nil
	}
	return os.RemoveAll(p.Dir)
}

// Engine downloads and unpacks archives under a scratch root.
type Engine struct {
	client  *http.Client
	scratch string
	logger  *slog.Logger
}

// NewEngine returns an engine writing under scratchDir.
func NewEngine(scratchDir string, timeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		client:  &http.Client{Timeout: timeout},
		scratch: scratchDir,
		logger:  logger,
	}
}

// WithHTTPClient overrides the engine's HTTP client, for tests.
func (e *Engine) WithHTTPClient(client *http.Client) *Engine {
	e.client = client
	return e
}

// Fetch downloads the archive for appID from src and harvests it. The
// per-app scratch directory is cleared before use and removed again on any
// failure; on success the caller owns cleanup via Payload.Close.
func (e *Engine) Fetch(ctx context.Context, src Source, appID string) (*Payload, error) {
	return e.fetchURL(ctx, src.Label, src.URL(appID), appID)
}

func (e *Engine) fetchURL(ctx context.Context, label, url, appID string) (*Payload, error) {
	workDir := filepath.Join(e.scratch, appID)
	if err := os.RemoveAll(workDir); err != nil {
		return nil, fmt.Errorf("clear scratch: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch: %w", err)
	}

	payload, err := e.fetchInto(ctx, label, url, appID, workDir)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	return payload, nil
}

func (e *Engine) fetchInto(ctx context.Context, label, url, appID, workDir string) (*Payload, error) {
	e.logger.Info("downloading archive", "source", label, "app_id", appID, "url", url)
	zipPath := filepath.Join(workDir, appID+".zip")
	if err := e.download(ctx, url, zipPath); err != nil {
		return nil, err
	}

	extractDir := filepath.Join(workDir, "extract")
	if err := extractZip(zipPath, extractDir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(zipPath), err)
	}

	payload, err := harvest(extractDir, e.logger)
	if err != nil {
		return nil, err
	}
	payload.Dir = workDir
	e.logger.Info("archive harvested",
		"source", label,
		"app_id", appID,
		"manifests", len(payload.ManifestPaths),
		"keys", payload.Keys.Len())
	return payload, nil
}

func (e *Engine) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrDownload, resp.StatusCode, url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return out.Close()
}

// extractZip unpacks an archive, rejecting entries that would resolve
// outside destDir.
func extractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	for _, entry := range reader.File {
		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(entry, target); err != nil {
			return fmt.Errorf("entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// harvest classifies extracted files, converts encrypted containers into
// scripts, and aggregates depot keys. Key config files win when present;
// script scanning is the fallback for archives that only ship scripts.
func harvest(dir string, logger *slog.Logger) (*Payload, error) {
	payload := &Payload{Keys: depot.NewKeySet()}
	var scripts []string
	var keyConfigs []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch depot.Classify(path) {
		case depot.KindManifest:
			payload.ManifestPaths = append(payload.ManifestPaths, path)
			if ref, ok := depot.ParseManifestName(path); ok {
				payload.Manifests = append(payload.Manifests, ref)
			}
		case depot.KindKeyConfig:
			keyConfigs = append(keyConfigs, path)
		case depot.KindScript:
			scripts = append(scripts, path)
		case depot.KindContainer:
			converted, err := convertContainer(path)
			if err != nil {
				logger.Warn("container decode failed", "file", filepath.Base(path), "error", err)
				return nil
			}
			scripts = append(scripts, converted)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk extracted files: %w", err)
	}

	for _, path := range keyConfigs {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		set, err := depot.ParseKeyConfig(raw)
		if err != nil {
			logger.Warn("key config unparsable", "file", filepath.Base(path), "error", err)
			continue
		}
		payload.Keys.Merge(set)
	}
	if payload.Keys.Len() == 0 {
		for _, path := range scripts {
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			payload.Keys.Merge(depot.ScanScript(string(raw)))
		}
	}
	return payload, nil
}

// convertContainer decodes a .st container next to itself as a .lua script.
func convertContainer(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := container.Decode(raw)
	if err != nil {
		return "", err
	}
	dest := strings.TrimSuffix(path, filepath.Ext(path)) + ".lua"
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		return "", err
	}
	return dest, nil
}
