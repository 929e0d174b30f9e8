// Command depotkit resolves game identifiers into unlock artifacts from
// manifest repositories and archive mirrors.
package main
