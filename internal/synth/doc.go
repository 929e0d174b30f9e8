// Package synth turns aggregated depot keys and manifest files into the
// on-disk artifacts each unlock mechanism consumes: a per-app script for the
// script-based unlocker, or manifest copies plus app-list markers for the
// file-drop unlocker.
package synth
