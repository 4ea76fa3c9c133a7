package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds quick version probes so a wedged interpreter
// cannot stall the whole pipeline.
const probeTimeout = 10 * time.Second

// Toolchain performs the Python-side steps of the build pipeline.
type Toolchain interface {
	// InstallRequirements installs the dependencies listed in the manifest file.
	InstallRequirements(ctx context.Context, requirementsFile string) error
	// EnsurePackager makes sure PyInstaller is available, installing it when missing.
	EnsurePackager(ctx context.Context) error
	// PackageApplication runs PyInstaller against the entry point.
	PackageApplication(ctx context.Context, appName, entryPoint string) error
}

// PythonToolchain drives a concrete Python interpreter through its "-m"
// module switch, so pip and PyInstaller always belong to that interpreter's
// environment rather than whatever happens to be first on PATH.
type PythonToolchain struct {
	// interpreter is the resolved interpreter command or path.
	interpreter string
}

// NewPythonToolchain wraps the given interpreter command or path.
func NewPythonToolchain(interpreter string) *PythonToolchain {
	return &PythonToolchain{
		interpreter: interpreter,
	}
}

// Interpreter returns the wrapped interpreter command.
func (t *PythonToolchain) Interpreter() string {
	return t.interpreter
}

// InstallRequirements runs "python -m pip install -r <file>".
// Output streams straight to the operator's terminal so pip's own
// progress reporting stays visible.
func (t *PythonToolchain) InstallRequirements(ctx context.Context, requirementsFile string) error {
	cmd := exec.CommandContext(ctx, t.interpreter, "-m", "pip", "install", "-r", requirementsFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install requirements from %s: %w", requirementsFile, err)
	}

	return nil
}

// EnsurePackager checks that PyInstaller answers a version probe and
// installs it through pip when it does not.
func (t *PythonToolchain) EnsurePackager(ctx context.Context) error {
	if _, err := t.PackagerVersion(ctx); err == nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, t.interpreter, "-m", "pip", "install", "pyinstaller")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install pyinstaller: %w", err)
	}

	return nil
}

// PackageApplication runs PyInstaller with the fixed single-file windowed
// flags. Packaging has no timeout of its own, a large application can
// legitimately take minutes; cancelling the context stops it.
func (t *PythonToolchain) PackageApplication(ctx context.Context, appName, entryPoint string) error {
	cmd := exec.CommandContext(ctx,
		t.interpreter, "-m", "PyInstaller",
		"--onefile",
		"--windowed",
		"--name", appName,
		entryPoint)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("package %s: %w", appName, err)
	}

	return nil
}

// InterpreterVersion probes "python --version" and returns the bare
// version number, for example "3.11.4".
func (t *PythonToolchain) InterpreterVersion(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	// Old interpreters printed the version banner to stderr, so collect both streams.
	output, err := exec.CommandContext(probeCtx, t.interpreter, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("probe interpreter version: %w", err)
	}

	return parseInterpreterVersion(string(output)), nil
}

// PipVersion probes "python -m pip --version" and returns pip's banner line.
func (t *PythonToolchain) PipVersion(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, t.interpreter, "-m", "pip", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("probe pip version: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// PackagerVersion probes "python -m PyInstaller --version" and returns the
// reported PyInstaller version.
func (t *PythonToolchain) PackagerVersion(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, t.interpreter, "-m", "PyInstaller", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("probe pyinstaller version: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// parseInterpreterVersion extracts the bare version from a "Python 3.11.4" banner.
// Unrecognized banners are returned trimmed as-is.
func parseInterpreterVersion(output string) string {
	trimmed := strings.TrimSpace(output)

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return trimmed
	}

	return fields[len(fields)-1]
}
