package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/common"
	"github.com/oshokin/watermark-tool/internal/service/publisher"
	"github.com/oshokin/watermark-tool/internal/service/updater"
)

// TestPublisher_WritesManifest generates a manifest from placeholder release
// files and verifies its contents.
func TestPublisher_WritesManifest(t *testing.T) {
	t.Chdir(t.TempDir())

	// Any HTTP response makes the update folder count as reachable.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	cfg := config.Default()
	require.NoError(t, os.MkdirAll(cfg.DistFolder, 0o755))

	// The settings file is written by the publisher itself, the rest needs
	// placeholders: the packaged application inside the dist folder, the
	// suite executables next to the publisher.
	for _, name := range updater.FilesWithChecksum(cfg.AppName) {
		if name == config.DefaultConfigFilename {
			continue
		}

		path := name
		if name == common.ExecutableName(cfg.AppName) {
			path = filepath.Join(cfg.DistFolder, name)
		}

		require.NoError(t, os.WriteFile(path, []byte("placeholder"), 0o755))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := publisher.Run(ctx, &publisher.Options{
		ConfigPath:    config.DefaultConfigFilename,
		ServerAddress: "127.0.0.1:8080",
		UpdateFolder:  ts.URL,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(updater.VersionFilename)
	require.NoError(t, err)

	var desc updater.Description

	require.NoError(t, yaml.Unmarshal(data, &desc))
	require.Len(t, desc.Files, len(updater.FilesWithChecksum(cfg.AppName)))
	require.Contains(t, desc.Roles, updater.RoleUser)
	require.Contains(t, desc.Roles, updater.RoleBuilder)
	require.NotEmpty(t, desc.VersionNumber)
}
