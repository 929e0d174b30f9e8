package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"depotkit/internal/depot"
	"depotkit/internal/fileutil"
	"depotkit/internal/unlocker"
)

// ScriptInput carries everything needed to emit one unlock script.
type ScriptInput struct {
	AppID     string
	Keys      *depot.KeySet
	Manifests []depot.ManifestRef
	Policy    unlocker.VersionPolicy
}

// BuildScript renders the script text. Layout is fixed: a bootstrap line for
// the app itself, one addappid per depot key, then one setManifestid pin per
// manifest. Under the floating policy the pins are emitted as comments so the
// unlocker resolves the latest manifest itself.
func BuildScript(in ScriptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "addappid(%s, 1, \"None\")\n", in.AppID)
	if in.Keys != nil {
		for _, k := range in.Keys.All() {
			fmt.Fprintf(&b, "addappid(%s, 1, %q)\n", k.DepotID, k.DecryptionKey)
		}
	}
	prefix := ""
	if in.Policy == unlocker.Floating {
		prefix = "--"
	}
	for _, m := range in.Manifests {
		fmt.Fprintf(&b, "%ssetManifestid(%s, %q)\n", prefix, m.DepotID, m.Token)
	}
	return b.String()
}

// InstallScriptManifests copies manifest files into both caches the
// script-based unlocker reads from. Skipped entirely in auto-update mode,
// where the unlocker resolves manifests itself.
func InstallScriptManifests(manifestPaths []string, layout unlocker.Layout) error {
	dirs := []string{layout.ConfigDepotCacheDir(), layout.DepotCacheDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest cache: %w", err)
		}
	}
	for _, src := range manifestPaths {
		for _, dir := range dirs {
			if err := fileutil.CopyInto(src, dir); err != nil {
				return fmt.Errorf("install manifest %s: %w", filepath.Base(src), err)
			}
		}
	}
	return nil
}

// WriteScript renders the script and installs it into the plugin directory
// as {appID}.lua, creating the directory if needed.
func WriteScript(in ScriptInput, layout unlocker.Layout) (string, error) {
	dir := layout.PluginDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create plugin dir: %w", err)
	}
	dest := filepath.Join(dir, in.AppID+".lua")
	if err := os.WriteFile(dest, []byte(BuildScript(in)), 0o644); err != nil {
		return "", fmt.Errorf("write unlock script: %w", err)
	}
	return dest, nil
}
