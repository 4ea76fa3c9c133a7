package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	units "github.com/docker/go-units"

	"github.com/oshokin/watermark-tool/internal/docker"
	"github.com/oshokin/watermark-tool/internal/repository/report"
)

const distFolderMode = 0o755

var (
	// errNoInterpreter marks probes that cannot run without a resolved interpreter.
	errNoInterpreter = errors.New("no usable interpreter found")

	// errPackagerMissing is a warning only, the builder installs PyInstaller on demand.
	errPackagerMissing = errors.New("not installed, the builder installs it on demand")

	// errNotRegularFile rejects folders where a file is expected.
	errNotRegularFile = errors.New("not a regular file")
)

// checkInterpreter reports the resolved interpreter and its version.
func (d *doctor) checkInterpreter(ctx context.Context) (string, error) {
	if d.tc == nil {
		return "", errNoInterpreter
	}

	version, err := d.tc.InterpreterVersion(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s (%s)", version, d.tc.Interpreter()), nil
}

// checkPip reports pip's banner line for the resolved interpreter.
func (d *doctor) checkPip(ctx context.Context) (string, error) {
	if d.tc == nil {
		return "", errNoInterpreter
	}

	return d.tc.PipVersion(ctx)
}

// checkPackager reports the PyInstaller version.
func (d *doctor) checkPackager(ctx context.Context) (string, error) {
	if d.tc == nil {
		return "", errNoInterpreter
	}

	version, err := d.tc.PackagerVersion(ctx)
	if err != nil {
		return "", errPackagerMissing
	}

	return "PyInstaller " + version, nil
}

// checkEntryPoint verifies the application source file exists.
func (d *doctor) checkEntryPoint(_ context.Context) (string, error) {
	return checkRegularFile(d.cfg.EntryPoint)
}

// checkRequirements verifies the dependency manifest exists.
func (d *doctor) checkRequirements(_ context.Context) (string, error) {
	return checkRegularFile(d.cfg.RequirementsFile)
}

// checkDistFolder proves the artifact folder can be written to.
func (d *doctor) checkDistFolder(_ context.Context) (string, error) {
	if err := os.MkdirAll(d.cfg.DistFolder, distFolderMode); err != nil {
		return "", err
	}

	probe, err := os.CreateTemp(d.cfg.DistFolder, "doctor-probe-*")
	if err != nil {
		return "", err
	}

	// Best-effort cleanup.
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return d.cfg.DistFolder + " is writable", nil
}

// checkDocker pings the daemon and looks for the containerized build image.
func (d *doctor) checkDocker(ctx context.Context) (string, error) {
	client, err := docker.NewClient()
	if err != nil {
		return "", err
	}

	// Best-effort cleanup.
	defer func() { _ = client.Close() }()

	if err = client.Ping(ctx); err != nil {
		return "", err
	}

	present, err := client.HasImage(ctx, d.cfg.DockerImage)
	if err != nil {
		return "", err
	}

	if !present {
		return fmt.Sprintf("reachable, %s is not pulled yet", d.cfg.DockerImage), nil
	}

	return fmt.Sprintf("reachable, %s is present", d.cfg.DockerImage), nil
}

// checkLastBuild summarizes the most recent build report, if any.
func (d *doctor) checkLastBuild(ctx context.Context) (string, error) {
	lastReport, err := report.NewFileRepository(d.cfg.ReportFile).Load(ctx)
	if errors.Is(err, report.ErrNotFound) {
		return "no build recorded yet", nil
	}

	if err != nil {
		return "", err
	}

	age := units.HumanDuration(time.Since(lastReport.FinishedAt))

	if !lastReport.Succeeded {
		return "", fmt.Errorf("failed %s ago", age)
	}

	return fmt.Sprintf("succeeded %s ago (%s)",
		age, units.HumanSize(float64(lastReport.ArtifactSize))), nil
}

// checkRegularFile stats the path and rejects directories.
func checkRegularFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, errNotRegularFile)
	}

	return path, nil
}
