package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/watermark-tool/internal/config"
	domain "github.com/oshokin/watermark-tool/internal/domain/build"
	"github.com/oshokin/watermark-tool/internal/repository/report"
	"github.com/oshokin/watermark-tool/internal/service/builder"
	"github.com/oshokin/watermark-tool/internal/service/common"
)

// stubInterpreter puts a fake python first on PATH. It answers the pipeline's
// version probes and, when writesArtifact is set, drops the expected artifact
// into the dist folder on the packaging call.
func stubInterpreter(t *testing.T, writesArtifact bool) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("the stub interpreter is a POSIX shell script")
	}

	packagingBranch := "exit 0"
	if writesArtifact {
		packagingBranch = fmt.Sprintf("mkdir -p dist && echo packaged > dist/%s", config.DefaultAppName)
	}

	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "Python 3.11.4"
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "pip" ]; then
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "PyInstaller" ]; then
  if [ "$3" = "--version" ]; then
    echo "6.3.0"
    exit 0
  fi
  %s
fi
`, packagingBranch)

	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "python"), []byte(script), 0o755))

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// writePipelineInputs lays down the source tree the build pipeline consumes.
func writePipelineInputs(t *testing.T) {
	t.Helper()

	require.NoError(t, os.MkdirAll("src", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("src", "main.py"), []byte("print()"), 0o600))
	require.NoError(t, os.WriteFile("requirements.txt", []byte("pyside6\n"), 0o600))
}

// TestBuilder_Run_PackagesWithStubInterpreter drives the whole pipeline with a
// stub interpreter and verifies the artifact probe, the report and the marker.
func TestBuilder_Run_PackagesWithStubInterpreter(t *testing.T) {
	stubInterpreter(t, true)
	t.Chdir(t.TempDir())
	writePipelineInputs(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, builder.Run(ctx, &builder.Options{}))

	cfg := config.Default()
	require.FileExists(t, common.ArtifactPath(cfg))

	saved, err := report.NewFileRepository(cfg.ReportFile).Load(ctx)
	require.NoError(t, err)
	require.True(t, saved.Succeeded)
	require.Len(t, saved.Steps, 3)

	// The marker must not survive the run.
	require.NoFileExists(t, builder.MarkerFilename)
}

// TestBuilder_Run_FailsWithoutArtifact proves the verdict comes from the
// artifact probe: every step succeeds, yet the build fails.
func TestBuilder_Run_FailsWithoutArtifact(t *testing.T) {
	stubInterpreter(t, false)
	t.Chdir(t.TempDir())
	writePipelineInputs(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := builder.Run(ctx, &builder.Options{})
	require.ErrorIs(t, err, builder.ErrArtifactMissing)

	saved, err := report.NewFileRepository(config.DefaultReportFilename).Load(ctx)
	require.NoError(t, err)
	require.False(t, saved.Succeeded)

	// All steps passed, the artifact alone decided the outcome.
	for _, step := range saved.Steps {
		require.Equal(t, domain.StepSucceeded, step.Status)
	}
}
