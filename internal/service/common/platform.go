package common

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/oshokin/watermark-tool/internal/config"
)

// ExecutableExtension returns the file extension executables carry on the
// current platform: ".exe" on Windows, an empty string everywhere else.
func ExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// ExecutableName appends the platform executable extension to a base name.
func ExecutableName(base string) string {
	return base + ExecutableExtension()
}

// ArtifactName returns the file name the packaging step produces for the
// configured application on the current platform.
func ArtifactName(cfg *config.Config) string {
	return ExecutableName(cfg.AppName)
}

// ArtifactPath returns the expected path of the packaged application,
// relative to the working directory the build runs in.
func ArtifactPath(cfg *config.Config) string {
	return filepath.Join(cfg.DistFolder, ArtifactName(cfg))
}
