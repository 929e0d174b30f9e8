// Package keyvalues reads and writes Valve's text KeyValues format (VDF).
// Entry order is preserved across a parse/serialize round trip so the tool
// can edit externally-owned files without churning unrelated content.
package keyvalues
