package synth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"depotkit/internal/depot"
	"depotkit/internal/fileutil"
	"depotkit/internal/unlocker"
)

// ErrNoManifests is returned when file-drop synthesis finds nothing to copy.
// Unlike the script path, the file-drop mechanism is useless without manifest
// files, so this aborts the identifier.
var ErrNoManifests = errors.New("no manifest files available for file-drop synthesis")

// FileDropInput carries the artifacts for one file-drop installation.
type FileDropInput struct {
	AppID         string
	ManifestPaths []string
	Keys          *depot.KeySet
}

// InstallFileDrop copies every manifest into Steam's depot cache and writes
// sequential app-list marker files for the app id plus each keyed depot id.
// Marker numbering continues after the highest existing index so reruns and
// multi-app batches never clobber earlier entries.
func InstallFileDrop(in FileDropInput, layout unlocker.Layout) error {
	if len(in.ManifestPaths) == 0 {
		return ErrNoManifests
	}

	cacheDir := layout.DepotCacheDir()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create depot cache: %w", err)
	}
	for _, src := range in.ManifestPaths {
		if err := fileutil.CopyInto(src, cacheDir); err != nil {
			return fmt.Errorf("install manifest %s: %w", filepath.Base(src), err)
		}
	}

	ids := []string{in.AppID}
	if in.Keys != nil {
		for _, k := range in.Keys.All() {
			ids = append(ids, k.DepotID)
		}
	}
	return writeAppList(layout.AppListDir(), ids)
}

// writeAppList appends one marker file per id, numbered after the highest
// index already present. Ids already listed are skipped.
func writeAppList(dir string, ids []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create app list dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read app list dir: %w", err)
	}

	next := 0
	existing := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != ".txt" {
			continue
		}
		idx, err := strconv.Atoi(name[:len(name)-len(".txt")])
		if err != nil {
			continue
		}
		if idx >= next {
			next = idx + 1
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			existing[string(trimNewline(data))] = true
		}
	}

	sort.Strings(ids[1:]) // keep the app id first, depot ids ordered
	for _, id := range ids {
		if existing[id] {
			continue
		}
		name := filepath.Join(dir, strconv.Itoa(next)+".txt")
		if err := os.WriteFile(name, []byte(id), 0o644); err != nil {
			return fmt.Errorf("write app list entry: %w", err)
		}
		existing[id] = true
		next++
	}
	return nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
