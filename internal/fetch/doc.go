// Package fetch downloads repository content through an ordered candidate
// URL chain: CDN mirrors when the region prefers them, the raw origin
// otherwise. Which URL serves a file never changes which bytes are fetched.
package fetch
