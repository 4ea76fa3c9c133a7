package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveListenAddress covers override precedence and port extraction.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	// The override wins over everything.
	addr, err := resolveListenAddress("updates.example.com:8080", ":9090")
	require.NoError(t, err)
	require.Equal(t, ":9090", addr)

	// Without an override, only the port of the configured address is used.
	addr, err = resolveListenAddress("updates.example.com:8080", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", addr)

	// No address anywhere is a configuration error.
	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	// A config address without a port cannot be resolved.
	_, err = resolveListenAddress("updates.example.com", "")
	require.Error(t, err)
}
