// Package version carries the build metadata shared by all binaries of the
// suite. Version, Commit, and BuildTime are injected through ldflags and fall
// back to placeholder values in local builds.
//
// Full's output layout is load-bearing: the update workflow runs installed
// tools with the version subcommand and parses the line they print.
package version
