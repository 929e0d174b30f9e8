// Package steamcfg merges depot decryption keys into Steam's config.vdf.
// The file is externally owned, so every failure here is soft: the merge
// logs and reports false rather than aborting the run.
package steamcfg
