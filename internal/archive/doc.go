// Package archive retrieves unlock artifacts from static per-identifier
// archive endpoints. Each source serves a zip keyed by app id; the engine
// downloads into a scratch directory, extracts with a path-traversal guard,
// converts any encrypted containers, and harvests keys and manifests.
package archive
