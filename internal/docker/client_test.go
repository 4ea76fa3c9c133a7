package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectUnixSocket picks the first socket path that exists on disk.
func TestDetectUnixSocket(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sock := filepath.Join(dir, "docker.sock")
	require.NoError(t, os.WriteFile(sock, nil, 0o600))

	host, err := detectUnixSocket([]string{filepath.Join(dir, "missing.sock"), sock})
	require.NoError(t, err)
	require.Equal(t, "unix://"+sock, host)

	_, err = detectUnixSocket([]string{filepath.Join(dir, "missing.sock")})
	require.ErrorIs(t, err, errDaemonNotFound)
}

// TestPackagerCommand composes the fixed PyInstaller invocation.
func TestPackagerCommand(t *testing.T) {
	t.Parallel()

	command := PackagerCommand("ImageWatermarkTool", "src/main.py", "dist")
	require.Equal(t,
		"pyinstaller --onefile --windowed --name ImageWatermarkTool --distpath dist src/main.py",
		command)
}
