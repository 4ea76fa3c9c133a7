package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// containerWorkspace is where the packaging image expects the project mounted.
const containerWorkspace = "/src"

// PackagerCommand composes the PyInstaller invocation executed inside the
// container. The explicit --distpath keeps the artifact in the same dist
// folder the native pipeline uses.
func PackagerCommand(appName, entryPoint, distFolder string) string {
	return fmt.Sprintf("pyinstaller --onefile --windowed --name %s --distpath %s %s",
		appName, distFolder, entryPoint)
}

// PullImage fetches the packaging image through the docker CLI so its own
// progress output stays visible on the operator's terminal.
func PullImage(ctx context.Context, imageName string) error {
	cmd := exec.CommandContext(ctx, "docker", "pull", imageName)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker pull %s: %w", imageName, err)
	}

	return nil
}

// RunPackager runs the packaging image against the workspace. The image's
// entrypoint installs the dependency manifest on its own before executing
// the given PyInstaller command, so the native install steps are skipped
// when this backend is active.
func RunPackager(ctx context.Context, workspace, imageName, packagerCommand string) error {
	cmd := exec.CommandContext(ctx, "docker",
		"run", "--rm",
		"-v", workspace+":"+containerWorkspace,
		imageName,
		packagerCommand)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker run %s: %w", imageName, err)
	}

	return nil
}
