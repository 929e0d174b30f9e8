package config

// Default repos are checked in order during multi-repo search; order also
// breaks ranking ties.
var defaultRepos = []string{
	"SteamAutoCracks/ManifestHub",
	"ikun0014/ManifestHub",
	"Auiowu/ManifestAutoUpdate",
	"tymolu233/ManifestAutoUpdate",
}

const (
	defaultAPIBaseURL     = "https://api.github.com"
	defaultRegionProbeURL = "https://mips.kugou.com/check/iscn?&format=json"
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		GitHub: GitHub{
			APIBaseURL: defaultAPIBaseURL,
			Repos:      append([]string(nil), defaultRepos...),
		},
		Paths: Paths{
			ScratchDir: "~/.cache/depotkit/scratch",
			LogDir:     "~/.local/share/depotkit/logs",
		},
		Unlocker: Unlocker{
			AutoRestartSteam: true,
		},
		Network: Network{
			PreferMirrors:   "auto",
			RequestTimeout:  30,
			RegionProbeURL:  defaultRegionProbeURL,
			TreeFetchPolicy: "fail_fast",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
