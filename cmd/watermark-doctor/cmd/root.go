package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/doctor"
	"github.com/oshokin/watermark-tool/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for diagnosing the build environment.
	rootCmd = &cobra.Command{
		Use:   "watermark-doctor [python-interpreter]",
		Short: "Diagnose the build environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use interpreter argument if provided, otherwise rely on config.
			var pythonInterpreter string
			if len(args) > 0 {
				pythonInterpreter = args[0]
			}

			options := &doctor.Options{
				ConfigPath:        configPath,
				PythonInterpreter: pythonInterpreter,
			}

			return doctor.Run(ctx, options)
		},
	}
)

// Execute runs the watermark-doctor CLI and exits with non-zero status on error.
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
}
