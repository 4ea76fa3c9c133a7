package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/builder"
	"github.com/oshokin/watermark-tool/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// useDocker switches packaging to the containerized Windows backend.
	useDocker bool

	// rootCmd represents the base command for building the application.
	rootCmd = &cobra.Command{
		Use:   "watermark-builder [python-interpreter]",
		Short: "Build the packaged application with PyInstaller.",
		Long: `Installs the application's Python dependencies, makes sure PyInstaller is
available and packages the application into a single windowed executable.

Step failures do not abort the run: the verdict comes from probing the dist
folder for the packaged artifact afterwards. The interpreter can be given as
an argument to override both the search path and the settings file.
With --docker the packaging step runs inside a Windows build container instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use interpreter argument if provided, otherwise rely on config.
			var pythonInterpreter string
			if len(args) > 0 {
				pythonInterpreter = args[0]
			}

			options := &builder.Options{
				ConfigPath:        configPath,
				PythonInterpreter: pythonInterpreter,
				UseDocker:         useDocker,
			}

			return builder.Run(ctx, options)
		},
	}
)

// Execute runs the watermark-builder CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVarP(&useDocker, "docker", "d", false, "package inside the Windows build container")
}
