// Package publisher prepares the release manifest consumed by the updater.
//
// It computes checksums for platform-specific binaries and the packaged
// application, wires role-to-files mappings, and persists connection
// settings. The resulting YAML is uploaded to the update folder served
// to workstations.
package publisher
