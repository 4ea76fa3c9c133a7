package integration

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/updater"
)

// TestUpdater_Run_FetchesAndApplies serves a manifest and a file over HTTP and
// verifies the updater downloads and applies both before failing to start the
// role's executable.
func TestUpdater_Run_FetchesAndApplies(t *testing.T) {
	t.Chdir(t.TempDir())

	var (
		fileName = "dummy.bin"
		fileBody = []byte("dummy-contents")
	)

	checksum := sha512.Sum512(fileBody)

	manifest := &updater.Description{
		VersionNumber: "test-version",
		Files:         map[string]string{fileName: base64.StdEncoding.EncodeToString(checksum[:])},
		Roles:         map[string][]string{updater.RoleUser: {fileName}},
		Executables:   map[string]string{updater.RoleUser: "nonexistent-binary"},
	}

	manifestBytes, err := yaml.Marshal(manifest)
	require.NoError(t, err)

	// Serve the manifest and the release file.
	mux := http.NewServeMux()
	mux.HandleFunc("/"+updater.VersionFilename, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(manifestBytes)
	})
	mux.HandleFunc("/"+fileName, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fileBody)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	require.NoError(t, config.Save(config.DefaultConfigFilename, &config.Config{
		ServerUpdateFolder: ts.URL,
	}))

	// The run must fail at the final step, starting the role's executable.
	err = updater.Run(context.Background(), &updater.Options{
		ConfigPath: config.DefaultConfigFilename,
		UpdateType: updater.RoleUser,
	})
	require.Error(t, err)

	// The file was downloaded and applied before the start failure.
	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	require.Equal(t, fileBody, data)

	// The manifest copy stays local so the user role can report its version.
	require.FileExists(t, updater.VersionFilename)

	// The update marker must not survive the run.
	require.NoFileExists(t, updater.MarkerFilename)
}
