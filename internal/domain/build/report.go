package build

import "time"

// Actor identifies who performed a build on which machine.
type Actor struct {
	// Hostname is the machine name where the build ran.
	Hostname string
	// Username is the system user who started the build.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// StepStatus describes the outcome of a single pipeline step.
type StepStatus string

const (
	// StepSucceeded marks a step that completed without an error.
	StepSucceeded StepStatus = "succeeded"
	// StepFailed marks a step that reported an error. The pipeline keeps
	// going regardless; only the final artifact probe decides the outcome.
	StepFailed StepStatus = "failed"
	// StepSkipped marks a step the pipeline did not run, for example when the
	// container backend handles dependency installation internally.
	StepSkipped StepStatus = "skipped"
)

// Step records the outcome of one pipeline step.
type Step struct {
	// Name is the step name as shown to the operator.
	Name string
	// Status is the step outcome.
	Status StepStatus
	// Duration is how long the step ran.
	Duration time.Duration
	// Error is the step error text, empty on success.
	Error string
}

// Report describes a completed build run.
type Report struct {
	// StartedAt is when the pipeline started.
	StartedAt time.Time
	// FinishedAt is when the pipeline finished.
	FinishedAt time.Time
	// Actor is the user who ran the build.
	Actor *Actor
	// AppName is the expected artifact base name.
	AppName string
	// ArtifactPath is the location probed for the artifact.
	ArtifactPath string
	// ArtifactSize is the artifact size in bytes, zero when missing.
	ArtifactSize int64
	// Succeeded reports whether the artifact existed after the pipeline ran.
	Succeeded bool
	// Steps are the pipeline steps in execution order.
	Steps []Step
}

// Clone returns a copy of the report to avoid leaking internal references.
func (r *Report) Clone() *Report {
	cloned := *r
	cloned.Actor = r.Actor.Clone()
	cloned.Steps = append([]Step(nil), r.Steps...)

	return &cloned
}

// FailedSteps returns the steps that reported an error, in execution order.
func (r *Report) FailedSteps() []Step {
	var failed []Step

	for _, step := range r.Steps {
		if step.Status == StepFailed {
			failed = append(failed, step)
		}
	}

	return failed
}
