// Package common holds helpers shared by several services.
//
// It provides a lightweight HTTP client for the update folder with call
// timeouts, utilities to detect the current system actor (hostname/username)
// for build reports, and platform helpers for executable and artifact names.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
