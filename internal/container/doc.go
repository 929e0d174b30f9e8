// Package container decodes the obfuscated .st script container format:
// a 12-byte little-endian header, a single-byte XOR stream cipher, a zlib
// payload, and a fixed 512-byte padding region ahead of the script text.
package container
