package doctor

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRun_ReportsMissingEnvironment runs the full probe list in an empty
// folder with an empty search path. Every required probe fails and the run
// reports it, while optional probes only warn.
func TestRun_ReportsMissingEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PATH", t.TempDir())

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, errChecksFailed)

	// The writability probe created the artifact folder along the way.
	require.DirExists(t, "dist")
}

// TestRun_BadOverrideStillProbesFiles keeps going when the interpreter
// override cannot be resolved.
func TestRun_BadOverrideStillProbesFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PATH", t.TempDir())

	require.NoError(t, os.MkdirAll("src", 0o755))
	require.NoError(t, os.WriteFile("src/main.py", []byte("print()"), 0o600))
	require.NoError(t, os.WriteFile("requirements.txt", []byte("pyside6\n"), 0o600))

	err := Run(context.Background(), &Options{PythonInterpreter: "definitely-not-python"})
	require.ErrorIs(t, err, errChecksFailed)
}
