// Package pipeline drives a batch of identifiers through resolution,
// retrieval, and artifact synthesis. Identifiers are processed strictly in
// sequence; failures are contained per identifier and reported in the run
// summary. The only unconditional hard stop is an unlocker conflict.
package pipeline
