package updater

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/common"
	"github.com/oshokin/watermark-tool/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// VersionFilename stores the update description pushed to workstations.
	// The updater also keeps a local copy of it next to the installed files
	// so the installed version survives without any executable to ask.
	VersionFilename = "watermark-tool-version.yaml"

	// MarkerFilename marks that the updater is running right now to avoid parallel execution.
	MarkerFilename = "watermark-tool-update-marker.bin"

	// DefaultFileMode is used when producing artifacts for distribution.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate update file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// RoleUser receives the packaged application itself.
	RoleUser = "user"

	// RoleBuilder receives the build and diagnostics tools.
	RoleBuilder = "builder"

	// Base executable names; platform helpers append extension when needed.
	baseBuilderExecutable = "watermark-builder"
	baseStamperExecutable = "watermark-stamper"
	baseDoctorExecutable  = "watermark-doctor"
	baseUpdaterExecutable = "watermark-updater"

	// markerLifetime is the period after which a stale update marker is ignored.
	markerLifetime = 30 * time.Second

	// defaultMapCapacity is the default initial capacity for maps and slices.
	defaultMapCapacity = 16

	// versionCommandTimeout is the timeout for executing version commands.
	versionCommandTimeout = 10 * time.Second
)

// Roles returns the update roles a workstation may subscribe to.
func Roles() []string {
	return []string{RoleUser, RoleBuilder}
}

// AllowedUserRoles returns artifact lists per role for the current platform.
// The application executable carries the configured application name.
func AllowedUserRoles(appName string) map[string][]string {
	return map[string][]string{
		RoleUser: {
			common.ExecutableName(appName),
			updaterExecutable(),
			config.DefaultConfigFilename,
		},
		RoleBuilder: {
			builderExecutable(),
			stamperExecutable(),
			doctorExecutable(),
			updaterExecutable(),
			config.DefaultConfigFilename,
		},
	}
}

// ExecutablesByUserRoles returns the start targets per role for the current
// platform. The user role starts the application itself; the builder role
// starts the diagnostics tool to verify the refreshed toolset.
func ExecutablesByUserRoles(appName string) map[string]string {
	return map[string]string{
		RoleUser:    common.ExecutableName(appName),
		RoleBuilder: doctorExecutable(),
	}
}

// FilesWithChecksum returns the list of artifacts to hash for this platform.
func FilesWithChecksum(appName string) []string {
	return []string{
		common.ExecutableName(appName),
		builderExecutable(),
		stamperExecutable(),
		doctorExecutable(),
		updaterExecutable(),
		config.DefaultConfigFilename,
	}
}

// Description contains metadata about a published release.
type Description struct {
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Files maps filenames to their base64-encoded checksums.
	Files map[string]string `yaml:"files"`
	// Roles maps role names to lists of files required for that role.
	Roles map[string][]string `yaml:"roles"`
	// Executables maps role names to their primary executable files.
	Executables map[string]string `yaml:"executables"`
}

// NewDescription produces a Description initialized with defaults.
func NewDescription() *Description {
	return &Description{
		VersionNumber: version.Short(),
		Files:         make(map[string]string, defaultMapCapacity),
		Roles:         make(map[string][]string, defaultMapCapacity),
		Executables:   make(map[string]string, defaultMapCapacity),
	}
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	hash := hasher.Sum(nil)

	return hash, nil
}

// IsUpdaterRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsUpdaterRunningNow(ctx context.Context) bool {
	return updateMarker().IsHeld(ctx)
}

// updateMarker returns the guard protecting against concurrent updater runs.
func updateMarker() *common.Marker {
	return &common.Marker{
		Filename:    MarkerFilename,
		Lifetime:    markerLifetime,
		ProcessName: updaterExecutable(),
	}
}

func builderExecutable() string {
	return common.ExecutableName(baseBuilderExecutable)
}

func stamperExecutable() string {
	return common.ExecutableName(baseStamperExecutable)
}

func doctorExecutable() string {
	return common.ExecutableName(baseDoctorExecutable)
}

func updaterExecutable() string {
	return common.ExecutableName(baseUpdaterExecutable)
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
