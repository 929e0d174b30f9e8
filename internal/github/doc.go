// Package github talks to the manifest repositories' tree API: branch
// lookup keyed by app id, tree listings, quota checks, and ranking across
// multiple repositories.
package github
