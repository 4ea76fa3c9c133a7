package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "build-host",
		Username: "builder",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestReportClone verifies that Report.Clone copies fields and deep-copies Actor and Steps.
func TestReportClone(t *testing.T) {
	t.Parallel()

	r := Report{
		StartedAt:    time.Now().UTC().Truncate(time.Second),
		FinishedAt:   time.Now().UTC().Truncate(time.Second),
		Actor:        &Actor{Hostname: "build-host", Username: "builder"},
		AppName:      "ImageWatermarkTool",
		ArtifactPath: "dist/ImageWatermarkTool",
		Succeeded:    true,
		Steps: []Step{
			{Name: "install dependencies", Status: StepSucceeded, Duration: time.Second},
		},
	}

	c := r.Clone()
	require.Equal(t, r.Succeeded, c.Succeeded)
	require.Equal(t, r.Actor, c.Actor)
	require.Equal(t, r.Steps, c.Steps)

	// Ensure pointers and slices are cloned.
	require.NotSame(t, r.Actor, c.Actor)

	c.Steps[0].Status = StepFailed
	require.Equal(t, StepSucceeded, r.Steps[0].Status)
}

// TestFailedSteps verifies that only failed steps are returned, in order.
func TestFailedSteps(t *testing.T) {
	t.Parallel()

	r := Report{
		Steps: []Step{
			{Name: "install dependencies", Status: StepFailed, Error: "pip exploded"},
			{Name: "ensure packager", Status: StepSucceeded},
			{Name: "package application", Status: StepFailed, Error: "no entry point"},
		},
	}

	failed := r.FailedSteps()
	require.Len(t, failed, 2)
	require.Equal(t, "install dependencies", failed[0].Name)
	require.Equal(t, "package application", failed[1].Name)

	require.Empty(t, (&Report{}).FailedSteps())
}
