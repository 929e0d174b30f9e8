package depot

import (
	"path"
	"regexp"
	"strings"
)

// FileKind tags a retrieved file by its role in synthesis.
type FileKind int

const (
	KindOther FileKind = iota
	KindManifest
	KindKeyConfig
	KindContainer
	KindScript
)

func (k FileKind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindKeyConfig:
		return "keyconfig"
	case KindContainer:
		return "container"
	case KindScript:
		return "script"
	default:
		return "other"
	}
}

// Classify maps a file path to its role. The key config match is
// case-insensitive on the base name, mirroring the upstream repos which mix
// Key.vdf and key.vdf.
func Classify(filePath string) FileKind {
	base := strings.ToLower(path.Base(filePath))
	switch {
	case strings.HasSuffix(base, ".manifest"):
		return KindManifest
	case strings.Contains(base, "key.vdf"):
		return KindKeyConfig
	case strings.HasSuffix(base, ".st"):
		return KindContainer
	case strings.HasSuffix(base, ".lua"):
		return KindScript
	default:
		return KindOther
	}
}

// ManifestRef is a manifest filename decomposed per the
// {depotId}_{manifestToken}.manifest grammar.
type ManifestRef struct {
	DepotID string
	Token   string
}

var manifestNamePattern = regexp.MustCompile(`(\d+)_(\w+)\.manifest`)

// ParseManifestName decomposes a manifest filename; ok is false when the
// name does not follow the grammar.
func ParseManifestName(name string) (ManifestRef, bool) {
	m := manifestNamePattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return ManifestRef{}, false
	}
	return ManifestRef{DepotID: m[1], Token: m[2]}, true
}
