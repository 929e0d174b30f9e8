// Package depot models depot decryption keys and classifies retrieved files
// by role before synthesis.
package depot
