// Package appid normalizes user-supplied game identifiers into canonical
// numeric app ids. Inputs may be bare numbers, store page URLs, or SteamDB
// page URLs.
package appid
