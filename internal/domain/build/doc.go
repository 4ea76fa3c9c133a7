// Package build contains core domain types for build runs.
//
// It defines Actor (who ran the build), Step (one pipeline step outcome)
// and Report (the full run record) with Clone helpers to avoid leaking
// internal references.
package build
