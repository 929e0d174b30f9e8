package unlocker

// VersionPolicy controls whether manifest-pin directives are emitted active
// (Locked) or as inert comments the unlocker resolves later (Floating).
type VersionPolicy int

const (
	Locked VersionPolicy = iota
	Floating
)

func (p VersionPolicy) String() string {
	if p == Floating {
		return "floating"
	}
	return "locked"
}

// PolicyFor derives the version policy. Floating applies only when the
// script-based unlocker runs in auto-update mode without an explicit lock
// override; every other combination pins manifest versions.
func PolicyFor(mode Mode, autoUpdateOnly, lockVersion bool) VersionPolicy {
	if mode == ScriptBased && autoUpdateOnly && !lockVersion {
		return Floating
	}
	return Locked
}

// SkipManifestDownloads reports whether manifest files should not be
// downloaded at all (the unlocker will resolve them itself).
func SkipManifestDownloads(mode Mode, autoUpdateOnly bool) bool {
	return mode == ScriptBased && autoUpdateOnly
}
