package unlocker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Mode identifies the installed unlock mechanism.
type Mode int

const (
	// Undetermined means no mechanism was detected; synthesis requires an
	// explicit user choice before proceeding.
	Undetermined Mode = iota
	// ScriptBased drives per-identifier unlock scripts in the plugin dir.
	ScriptBased
	// FileDropBased drives manifest copies plus app-list marker files.
	FileDropBased
	// Conflict means both mechanisms are present; this is a hard stop.
	Conflict
)

func (m Mode) String() string {
	switch m {
	case ScriptBased:
		return "script"
	case FileDropBased:
		return "filedrop"
	case Conflict:
		return "conflict"
	default:
		return "undetermined"
	}
}

// ErrConflict is returned when both mechanisms are installed at once.
var ErrConflict = errors.New("unlocker conflict: both script-based and file-drop unlockers detected; remove one and rerun")

// ErrSteamNotFound is returned when no Steam install could be located.
var ErrSteamNotFound = errors.New("steam install not found; set paths.steam_path in the config")

// fileDropMarkers are the loader binaries whose presence selects file-drop
// mode.
var fileDropMarkers = []string{
	"GreenLuma_2025_x86.dll",
	"GreenLuma_2025_x64.dll",
}

// Layout resolves the artifact directories under one Steam install root.
type Layout struct {
	Root string
}

// PluginDir is the script-based unlocker's plugin directory.
func (l Layout) PluginDir() string { return filepath.Join(l.Root, "config", "stplug-in") }

// DepotCacheDir is Steam's own manifest cache.
func (l Layout) DepotCacheDir() string { return filepath.Join(l.Root, "depotcache") }

// ConfigDepotCacheDir is the secondary manifest cache under config/.
func (l Layout) ConfigDepotCacheDir() string {
	return filepath.Join(l.Root, "config", "depotcache")
}

// AppListDir is the file-drop unlocker's marker directory.
func (l Layout) AppListDir() string { return filepath.Join(l.Root, "AppList") }

// ConfigVDFPath is Steam's externally-owned key/value config file.
func (l Layout) ConfigVDFPath() string { return filepath.Join(l.Root, "config", "config.vdf") }

// conventionalRoots lists the usual Steam install locations probed when no
// custom path is configured.
func conventionalRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, "Library", "Application Support", "Steam"),
		)
	}
	roots = append(roots,
		`C:\Program Files (x86)\Steam`,
		`C:\Program Files\Steam`,
	)
	return roots
}

// ResolveRoot locates the Steam install, preferring an explicitly
// configured path over the conventional locations.
func ResolveRoot(customPath string) (string, error) {
	if customPath != "" {
		info, err := os.Stat(customPath)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: configured path %q is not a directory", ErrSteamNotFound, customPath)
		}
		return customPath, nil
	}
	for _, root := range conventionalRoots() {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root, nil
		}
	}
	return "", ErrSteamNotFound
}

// DetectMode inspects the install for unlock mechanisms.
func DetectMode(root string) Mode {
	layout := Layout{Root: root}

	script := false
	if info, err := os.Stat(layout.PluginDir()); err == nil && info.IsDir() {
		script = true
	}

	fileDrop := false
	for _, marker := range fileDropMarkers {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			fileDrop = true
			break
		}
	}

	switch {
	case script && fileDrop:
		return Conflict
	case script:
		return ScriptBased
	case fileDrop:
		return FileDropBased
	default:
		return Undetermined
	}
}
