package steamcfg

import (
	"log/slog"
	"os"

	"github.com/gofrs/flock"

	"depotkit/internal/depot"
	"depotkit/internal/keyvalues"
)

// MergeKeys folds every depot key into the depots section of config.vdf,
// creating the section when absent. It reports whether the merge happened;
// a missing file, unparsable content, or an unexpected layout degrades to a
// warning so the rest of the run proceeds. Steam itself rewrites this file,
// so a file lock guards against concurrent tool invocations only.
func MergeKeys(path string, keys *depot.KeySet, logger *slog.Logger) bool {
	if keys == nil || keys.Len() == 0 {
		return false
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		logger.Warn("config.vdf busy, skipping key merge", "path", path, "error", err)
		return false
	}
	defer lock.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("config.vdf not readable, skipping key merge", "path", path, "error", err)
		return false
	}
	root, err := keyvalues.Parse(raw)
	if err != nil {
		logger.Warn("config.vdf not parsable, skipping key merge", "path", path, "error", err)
		return false
	}

	depots := depotsSection(root)
	if depots == nil {
		logger.Warn("config.vdf missing expected sections, skipping key merge", "path", path)
		return false
	}
	for _, k := range keys.All() {
		entry := depots.Ensure(k.DepotID)
		entry.Set("DecryptionKey", k.DecryptionKey)
	}

	out := keyvalues.Marshal(root)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		logger.Warn("config.vdf not writable", "path", path, "error", err)
		return false
	}
	logger.Info("merged depot keys into config.vdf", "path", path, "keys", keys.Len())
	return true
}

// depotsSection walks InstallConfigStore/Software/Valve, tolerating the
// historical lowercase "valve" spelling, and creates only the final depots
// node. Installs that nest a Steam section under Valve keep depots there.
func depotsSection(root *keyvalues.Node) *keyvalues.Node {
	store := root.ChildFold("InstallConfigStore")
	if store == nil {
		return nil
	}
	software := store.ChildFold("Software")
	if software == nil {
		return nil
	}
	valve := software.ChildFold("Valve")
	if valve == nil {
		return nil
	}
	if steam := valve.ChildFold("Steam"); steam != nil {
		return steam.Ensure("depots")
	}
	return valve.Ensure("depots")
}
