package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/watermark-tool/internal/domain/build"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal report.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "report.json")
	repo := NewFileRepository(file)

	ts := time.Now().UTC().Truncate(time.Second)
	want := &domain.Report{
		StartedAt:  ts,
		FinishedAt: ts.Add(42 * time.Second),
		Actor: &domain.Actor{
			Hostname: "build-host",
			Username: "builder",
		},
		AppName:      "ImageWatermarkTool",
		ArtifactPath: filepath.Join("dist", "ImageWatermarkTool"),
		ArtifactSize: 1024,
		Succeeded:    true,
		Steps: []domain.Step{
			{Name: "install dependencies", Status: domain.StepSucceeded, Duration: 3 * time.Second},
			{Name: "package application", Status: domain.StepFailed, Duration: time.Second, Error: "boom"},
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Succeeded, got.Succeeded)
	require.Equal(t, want.StartedAt.Unix(), got.StartedAt.Unix())
	require.Equal(t, want.Actor, got.Actor)
	require.Equal(t, want.ArtifactPath, got.ArtifactPath)
	require.Equal(t, want.ArtifactSize, got.ArtifactSize)
	require.Equal(t, want.Steps, got.Steps)

	_, err = os.Stat(file)
	require.NoError(t, err)
}
