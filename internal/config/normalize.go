package config

import "strings"

func (c *Config) normalize() error {
	c.GitHub.Token = strings.TrimSpace(c.GitHub.Token)
	c.GitHub.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.GitHub.APIBaseURL), "/")
	if c.GitHub.APIBaseURL == "" {
		c.GitHub.APIBaseURL = defaultAPIBaseURL
	}

	repos := make([]string, 0, len(c.GitHub.Repos))
	for _, repo := range c.GitHub.Repos {
		repo = strings.TrimSpace(repo)
		if repo != "" {
			repos = append(repos, repo)
		}
	}
	c.GitHub.Repos = repos

	c.Unlocker.Force = strings.ToLower(strings.TrimSpace(c.Unlocker.Force))
	c.Network.PreferMirrors = strings.ToLower(strings.TrimSpace(c.Network.PreferMirrors))
	if c.Network.PreferMirrors == "" {
		c.Network.PreferMirrors = "auto"
	}
	c.Network.TreeFetchPolicy = strings.ToLower(strings.TrimSpace(c.Network.TreeFetchPolicy))
	if c.Network.TreeFetchPolicy == "" {
		c.Network.TreeFetchPolicy = "fail_fast"
	}
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = 30
	}
	c.Network.RegionProbeURL = strings.TrimSpace(c.Network.RegionProbeURL)
	if c.Network.RegionProbeURL == "" {
		c.Network.RegionProbeURL = defaultRegionProbeURL
	}

	for _, field := range []*string{&c.Paths.SteamPath, &c.Paths.ScratchDir, &c.Paths.LogDir} {
		value := strings.TrimSpace(*field)
		if value == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(value)
		if err != nil {
			return err
		}
		*field = expanded
	}

	defaults := Default()
	if c.Paths.ScratchDir == "" {
		expanded, err := expandPath(defaults.Paths.ScratchDir)
		if err != nil {
			return err
		}
		c.Paths.ScratchDir = expanded
	}
	if c.Paths.LogDir == "" {
		expanded, err := expandPath(defaults.Paths.LogDir)
		if err != nil {
			return err
		}
		c.Paths.LogDir = expanded
	}
	return nil
}
