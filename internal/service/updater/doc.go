// Package updater downloads and applies releases from the update folder.
//
// It validates installed files against checksums from the published manifest,
// downloads required artifacts to a temporary directory, atomically applies
// updates, and starts the appropriate executable for the workstation's role.
// A copy of the manifest is kept next to the installed files so the user
// role can report its version without running the packaged application.
package updater
