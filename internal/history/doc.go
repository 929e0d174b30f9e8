// Package history persists run outcomes in a local SQLite database so past
// batches can be inspected from the CLI.
package history
