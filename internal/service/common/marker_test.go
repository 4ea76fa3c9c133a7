//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestMarker_Lifecycle covers acquire, hold detection, and release.
func TestMarker_Lifecycle(t *testing.T) {
	t.Parallel()

	m := &Marker{
		Filename:    filepath.Join(t.TempDir(), "marker.bin"),
		Lifetime:    30 * time.Second,
		ProcessName: "definitely-not-a-running-process",
	}

	ctx := context.Background()
	require.False(t, m.IsHeld(ctx))

	require.NoError(t, m.Acquire())
	require.True(t, m.IsHeld(ctx))

	require.NoError(t, m.Release())
	require.False(t, m.IsHeld(ctx))

	// Releasing an already released marker is fine.
	require.NoError(t, m.Release())
}

// TestMarker_StaleReclaim removes markers older than the lifetime when the
// owning process is gone.
func TestMarker_StaleReclaim(t *testing.T) {
	t.Parallel()

	m := &Marker{
		Filename:    filepath.Join(t.TempDir(), "marker.bin"),
		Lifetime:    time.Second,
		ProcessName: "definitely-not-a-running-process",
	}

	require.NoError(t, m.Acquire())

	staleTime := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(m.Filename, staleTime, staleTime))

	require.False(t, m.IsHeld(context.Background()))

	_, err := os.Stat(m.Filename)
	require.ErrorIs(t, err, os.ErrNotExist)
}
