package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveInterpreter_OverridePath accepts explicit paths that exist and
// rejects ones that do not.
func TestResolveInterpreter_OverridePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	interpreter := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(interpreter, []byte("#!/bin/sh\n"), 0o755))

	resolved, err := ResolveInterpreter(interpreter)
	require.NoError(t, err)
	require.Equal(t, interpreter, resolved)

	_, err = ResolveInterpreter(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

// TestResolveInterpreter_OverrideCommand rejects command names absent from PATH.
func TestResolveInterpreter_OverrideCommand(t *testing.T) {
	t.Parallel()

	_, err := ResolveInterpreter("definitely-not-a-python-interpreter")
	require.Error(t, err)
}

// TestResolveInterpreter_NoCandidates reports a clear error when PATH holds
// no interpreter at all.
func TestResolveInterpreter_NoCandidates(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := ResolveInterpreter("")
	require.ErrorIs(t, err, errInterpreterNotFound)
}
