// Package storefront resolves game names to app ids through the public
// storefront search API, with a SteamSpy fallback when the storefront
// returns nothing.
package storefront
