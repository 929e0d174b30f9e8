// Package unlocker detects which third-party unlock mechanism is installed
// and derives the synthesis policy from it. The two mechanisms are mutually
// exclusive; detecting both is a hard configuration error.
package unlocker
