package config

import (
	"errors"
	"fmt"
)

// Validate rejects configurations that cannot drive a run.
func (c *Config) Validate() error {
	switch c.Unlocker.Force {
	case "", "script", "filedrop":
	default:
		return fmt.Errorf("unlocker.force: unsupported value %q (want script or filedrop)", c.Unlocker.Force)
	}
	switch c.Network.PreferMirrors {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("network.prefer_mirrors: unsupported value %q (want auto, always, or never)", c.Network.PreferMirrors)
	}
	switch c.Network.TreeFetchPolicy {
	case "fail_fast", "best_effort":
	default:
		return fmt.Errorf("network.tree_fetch_policy: unsupported value %q (want fail_fast or best_effort)", c.Network.TreeFetchPolicy)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	if len(c.GitHub.Repos) == 0 {
		return errors.New("github.repos: at least one manifest repository is required")
	}
	return nil
}
