package integration

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/server"
)

// TestServer_ServesAndShutsDown starts the file server, downloads a published
// file and stops the server by cancelling the context.
func TestServer_ServesAndShutsDown(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.MkdirAll(server.DefaultServeFolder, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(server.DefaultServeFolder, "release.bin"), []byte("payload"), 0o600))

	require.NoError(t, config.Save(config.DefaultConfigFilename, &config.Config{
		ServerAddress:      "127.0.0.1:8080",
		ServerUpdateFolder: "http://127.0.0.1:8080/updates",
	}))

	addr := reservePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:    config.DefaultConfigFilename,
			ListenAddress: addr,
		})
	}()

	// Wait for the listener to come up.
	var response *http.Response

	require.Eventually(t, func() bool {
		var err error

		response, err = http.Get("http://" + addr + "/release.bin")

		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, []byte("payload"), body)

	cancel()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

// reservePort returns an address on a free TCP port and closes it.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}
