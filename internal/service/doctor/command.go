package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/console"
	"github.com/oshokin/watermark-tool/internal/logger"
	"github.com/oshokin/watermark-tool/internal/service/toolchain"
)

// errChecksFailed indicates at least one required probe did not pass.
var errChecksFailed = errors.New("required checks failed")

// Options contains inputs for the diagnostics entry point.
type Options struct {
	// ConfigPath is an optional path to the build settings file.
	ConfigPath string
	// PythonInterpreter overrides the interpreter to inspect.
	PythonInterpreter string
}

// check is a single environment probe. The detail line is printed on
// success; optional probes degrade failures to warnings.
type check struct {
	name     string
	optional bool
	probe    func(ctx context.Context) (string, error)
}

// doctor inspects the build environment against one configuration.
// It is unexported—callers should use Run, which encapsulates setup.
type doctor struct {
	cfg *config.Config
	tc  *toolchain.PythonToolchain
}

// Run checks that this machine can build and package the application and
// prints one verdict per probe. Optional probes only warn; any required
// failure makes the run return an error.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "watermark-doctor")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	d := &doctor{cfg: cfg}
	d.resolveToolchain(ctx, opts.PythonInterpreter)

	return d.Run(ctx)
}

// resolveToolchain picks the interpreter the probes will exercise. An explicit
// override always wins; the settings value wins over candidate probing only
// when the operator changed it from the default. On failure the toolchain
// stays nil and the interpreter probes report the problem.
func (d *doctor) resolveToolchain(ctx context.Context, override string) {
	if override == "" && d.cfg.PythonExecutable != config.DefaultPythonExecutable {
		override = d.cfg.PythonExecutable
	}

	interpreter, err := toolchain.ResolveInterpreter(override)
	if err != nil {
		logger.Warnf(ctx, "Interpreter resolution failed: %v", err)

		return
	}

	d.tc = toolchain.NewPythonToolchain(interpreter)
}

// Run walks the probes in order and prints the summary verdict.
func (d *doctor) Run(ctx context.Context) error {
	console.Task("Checking the build environment")

	var failed, warned int

	checks := d.checks()
	for _, c := range checks {
		detail, err := c.probe(ctx)

		switch {
		case err == nil:
			console.Subtask("%s: %s", c.name, detail)
		case c.optional:
			warned++

			console.Warning("%s: %v", c.name, err)
			logger.WarnKV(ctx, "Optional check failed", "check", c.name, "error", err)
		default:
			failed++

			console.Error("%s: %v", c.name, err)
			logger.ErrorKV(ctx, "Required check failed", "check", c.name, "error", err)
		}
	}

	if failed > 0 {
		console.Failure("%d problem(s) found", failed)

		return fmt.Errorf("%d of %d: %w", failed, len(checks), errChecksFailed)
	}

	if warned > 0 {
		console.Success("Environment is usable with %d warning(s)", warned)

		return nil
	}

	console.Success("Environment is ready")

	return nil
}

// checks returns the probes in execution order.
func (d *doctor) checks() []check {
	return []check{
		{name: "python interpreter", probe: d.checkInterpreter},
		{name: "pip", probe: d.checkPip},
		{name: "packager", optional: true, probe: d.checkPackager},
		{name: "entry point", probe: d.checkEntryPoint},
		{name: "requirements file", probe: d.checkRequirements},
		{name: "dist folder", probe: d.checkDistFolder},
		{name: "docker daemon", optional: true, probe: d.checkDocker},
		{name: "last build", optional: true, probe: d.checkLastBuild},
	}
}
