package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHandler_ServesReleaseFiles returns published files and 404s for the rest.
func TestHandler_ServesReleaseFiles(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	contents := []byte("release payload")
	require.NoError(t, os.WriteFile(filepath.Join(folder, "app.bin"), contents, 0o600))

	srv := httptest.NewServer(newHandler(context.Background(), folder))
	defer srv.Close()

	response, err := http.Get(srv.URL + "/app.bin")
	require.NoError(t, err)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, contents, body)

	response, err = http.Get(srv.URL + "/missing.bin")
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, http.StatusNotFound, response.StatusCode)
}
