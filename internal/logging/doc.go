// Package logging builds the slog loggers used across depotkit: a compact
// console handler for interactive runs and a JSON handler for log scraping,
// with an optional on-disk copy next to the run history.
package logging
