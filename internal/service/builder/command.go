package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	units "github.com/docker/go-units"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/console"
	"github.com/oshokin/watermark-tool/internal/docker"
	domain "github.com/oshokin/watermark-tool/internal/domain/build"
	"github.com/oshokin/watermark-tool/internal/logger"
	"github.com/oshokin/watermark-tool/internal/repository/report"
	"github.com/oshokin/watermark-tool/internal/service/common"
	"github.com/oshokin/watermark-tool/internal/service/toolchain"
)

const (
	// MarkerFilename guards against two builds running in the same folder.
	MarkerFilename = "watermark-tool-build-marker.bin"

	// markerLifetime is the period after which a stale build marker is reclaimed.
	markerLifetime = 30 * time.Second

	// baseBuilderExecutable is the process name a stale marker is attributed to.
	baseBuilderExecutable = "watermark-builder"
)

// Step names as recorded in the build report.
const (
	stepInstallRequirements = "install requirements"
	stepEnsurePackager      = "ensure packager"
	stepPackageApplication  = "package application"
)

var (
	// errBuildAlreadyRunning indicates another build holds the marker in this folder.
	errBuildAlreadyRunning = errors.New("another build is already running in this folder")

	// ErrArtifactMissing is returned when the pipeline finished without
	// producing the expected artifact.
	ErrArtifactMissing = errors.New("build artifact not found")
)

// Options contains inputs for the builder entry point.
type Options struct {
	// ConfigPath is an optional path to the build settings file.
	ConfigPath string
	// PythonInterpreter overrides the interpreter that drives the build.
	PythonInterpreter string
	// UseDocker switches packaging to the containerized Windows backend.
	UseDocker bool
}

// builder walks the packaging pipeline and writes the build report.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type builder struct {
	// cfg holds the build settings.
	cfg *config.Config
	// opts are the caller's options.
	opts *Options
	// tc drives pip and PyInstaller. Unused with the container backend.
	tc toolchain.Toolchain
	// marker guards against concurrent builds in the same folder.
	marker *common.Marker
	// reports persists the build report.
	reports report.Repository
	// buildReport accumulates the outcome of this run.
	buildReport *domain.Report
}

// Run executes the build pipeline.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "watermark-builder")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	if !opts.UseDocker {
		cfg.PythonExecutable = resolveInterpreter(ctx, cfg, opts.PythonInterpreter)
	}

	b := newBuilder(cfg, opts, toolchain.NewPythonToolchain(cfg.PythonExecutable))

	return b.Run(ctx)
}

// resolveInterpreter picks the interpreter for the native backend. An explicit
// command-line override always wins; the settings value wins over candidate
// probing only when the operator changed it from the default. A resolution
// failure does not abort the build: the pipeline runs anyway and the final
// artifact probe reports the outcome.
func resolveInterpreter(ctx context.Context, cfg *config.Config, override string) string {
	if override == "" && cfg.PythonExecutable != config.DefaultPythonExecutable {
		override = cfg.PythonExecutable
	}

	interpreter, err := toolchain.ResolveInterpreter(override)
	if err != nil {
		logger.Warnf(ctx, "Interpreter resolution failed: %v", err)
		console.Warning("No usable Python interpreter found, build steps will likely fail")

		if override != "" {
			return override
		}

		return cfg.PythonExecutable
	}

	return interpreter
}

// newBuilder wires a builder from settings. The toolchain is injected so the
// pipeline can be driven without a real interpreter.
func newBuilder(cfg *config.Config, opts *Options, tc toolchain.Toolchain) *builder {
	return &builder{
		cfg:  cfg,
		opts: opts,
		tc:   tc,
		marker: &common.Marker{
			Filename:    MarkerFilename,
			Lifetime:    markerLifetime,
			ProcessName: common.ExecutableName(baseBuilderExecutable),
		},
		reports: report.NewFileRepository(cfg.ReportFile),
		buildReport: &domain.Report{
			AppName: cfg.AppName,
		},
	}
}

// Run walks the pipeline steps, probes for the artifact, and reports.
func (b *builder) Run(ctx context.Context) error {
	if b.marker.IsHeld(ctx) {
		return errBuildAlreadyRunning
	}

	if err := b.marker.Acquire(); err != nil {
		return fmt.Errorf("acquire build marker: %w", err)
	}

	defer func() {
		_ = b.marker.Release()
	}()

	b.buildReport.StartedAt = time.Now()
	b.detectActor(ctx)

	if b.opts.UseDocker {
		b.runContainerPipeline(ctx)
	} else {
		b.runNativePipeline(ctx)
	}

	b.probeArtifact(ctx)
	b.buildReport.FinishedAt = time.Now()

	b.saveReport(ctx)
	b.printReport()

	if !b.buildReport.Succeeded {
		return fmt.Errorf("%s: %w", b.buildReport.ArtifactPath, ErrArtifactMissing)
	}

	return nil
}

// runNativePipeline drives pip and PyInstaller through the local interpreter.
func (b *builder) runNativePipeline(ctx context.Context) {
	console.Task("Installing dependencies from %s", b.cfg.RequirementsFile)
	b.runStep(ctx, stepInstallRequirements, func(ctx context.Context) error {
		return b.tc.InstallRequirements(ctx, b.cfg.RequirementsFile)
	})

	console.Task("Making sure PyInstaller is available")
	b.runStep(ctx, stepEnsurePackager, func(ctx context.Context) error {
		return b.tc.EnsurePackager(ctx)
	})

	console.Task("Packaging %s", b.cfg.AppName)
	b.runStep(ctx, stepPackageApplication, func(ctx context.Context) error {
		return b.tc.PackageApplication(ctx, b.cfg.AppName, b.cfg.EntryPoint)
	})
}

// runContainerPipeline delegates packaging to the PyInstaller image. The
// image's entrypoint installs the dependency manifest itself, so the first
// two steps are recorded as skipped rather than silently dropped.
func (b *builder) runContainerPipeline(ctx context.Context) {
	b.skipStep(stepInstallRequirements)
	b.skipStep(stepEnsurePackager)

	console.Task("Packaging %s in %s", b.cfg.AppName, b.cfg.DockerImage)
	b.runStep(ctx, stepPackageApplication, func(ctx context.Context) error {
		return b.packageInContainer(ctx)
	})
}

// packageInContainer pulls the packaging image when absent and runs it
// against the current working directory.
func (b *builder) packageInContainer(ctx context.Context) error {
	client, err := docker.NewClient()
	if err != nil {
		return err
	}

	// Best-effort cleanup.
	defer func() {
		_ = client.Close()
	}()

	if err = client.Ping(ctx); err != nil {
		return err
	}

	present, err := client.HasImage(ctx, b.cfg.DockerImage)
	if err != nil {
		return err
	}

	if !present {
		console.Subtask("Pulling %s", b.cfg.DockerImage)

		if err = docker.PullImage(ctx, b.cfg.DockerImage); err != nil {
			return err
		}
	}

	workspace, err := os.Getwd()
	if err != nil {
		return err
	}

	command := docker.PackagerCommand(b.cfg.AppName, b.cfg.EntryPoint, b.cfg.DistFolder)

	return docker.RunPackager(ctx, workspace, b.cfg.DockerImage, command)
}

// runStep executes one pipeline step and records its outcome. A failed step
// never aborts the pipeline: later steps still get their chance to run and
// the artifact probe alone decides whether the build succeeded.
func (b *builder) runStep(ctx context.Context, name string, fn func(context.Context) error) {
	startedAt := time.Now()
	err := fn(ctx)
	elapsed := time.Since(startedAt)

	step := domain.Step{
		Name:     name,
		Status:   domain.StepSucceeded,
		Duration: elapsed,
	}

	if err != nil {
		step.Status = domain.StepFailed
		step.Error = err.Error()

		logger.WarnKV(ctx, "Build step failed", "step", name, "error", err)
		console.Warning("%s failed: %v", name, err)
	}

	b.buildReport.Steps = append(b.buildReport.Steps, step)
}

// skipStep records a step the active backend does not run.
func (b *builder) skipStep(name string) {
	b.buildReport.Steps = append(b.buildReport.Steps, domain.Step{
		Name:   name,
		Status: domain.StepSkipped,
	})
}

// probeArtifact stats the expected artifact location and fills the report.
// The stat is the single success signal of the whole pipeline.
func (b *builder) probeArtifact(ctx context.Context) {
	console.Task("Checking build results")

	artifactPath := b.artifactPath()
	b.buildReport.ArtifactPath = artifactPath

	info, err := os.Stat(artifactPath)
	if err != nil {
		logger.WarnKV(ctx, "Artifact not found", "path", artifactPath, "error", err)

		return
	}

	b.buildReport.Succeeded = true
	b.buildReport.ArtifactSize = info.Size()
}

// artifactPath returns the expected artifact location. The Windows packaging
// image emits a Windows executable regardless of the host platform, so the
// container backend always expects the ".exe" suffix.
func (b *builder) artifactPath() string {
	if b.opts.UseDocker {
		return filepath.Join(b.cfg.DistFolder, b.cfg.AppName+".exe")
	}

	return common.ArtifactPath(b.cfg)
}

// detectActor records who ran the build. A detection failure leaves the
// report without an actor.
func (b *builder) detectActor(ctx context.Context) {
	actor, err := common.DetectActor()
	if err != nil {
		logger.Warnf(ctx, "Unable to detect actor: %v", err)

		return
	}

	b.buildReport.Actor = actor
}

// saveReport persists the report next to the build. A persistence failure
// only produces a warning, the console report still tells the outcome.
func (b *builder) saveReport(ctx context.Context) {
	if err := b.reports.Save(ctx, b.buildReport); err != nil {
		logger.WarnKV(ctx, "Unable to save build report", "path", b.cfg.ReportFile, "error", err)
	}
}

// printReport renders the outcome as colored status lines on stdout.
func (b *builder) printReport() {
	for _, step := range b.buildReport.FailedSteps() {
		console.Error("%s: %s", step.Name, step.Error)
	}

	if b.buildReport.Succeeded {
		console.Success("Built %s (%s) in %s",
			b.buildReport.ArtifactPath,
			units.HumanSize(float64(b.buildReport.ArtifactSize)),
			b.buildReport.FinishedAt.Sub(b.buildReport.StartedAt).Round(time.Millisecond))

		return
	}

	console.Failure("Build failed: %s was not created", b.buildReport.ArtifactPath)
}
