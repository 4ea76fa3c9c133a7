package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/watermark-tool/internal/config"
	"github.com/oshokin/watermark-tool/internal/service/server"
	"github.com/oshokin/watermark-tool/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serveFolder holds the published files offered for download.
	serveFolder string

	// rootCmd represents the base command for running the update file server.
	rootCmd = &cobra.Command{
		Use:   "watermark-server [listen-address]",
		Short: "Serve published release files over HTTP.",
		Long: `Starts the HTTP file server workstations download updates from.

The server listens on the specified address or uses settings from configuration
file. Only the port from ServerAddress config is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090).
The served folder defaults to "updates" and is browsable for quick inspection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				Folder:        serveFolder,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the watermark-server CLI and exits with non-zero status on error.
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
	rootCmd.Flags().
		StringVarP(&serveFolder, "folder", "f", server.DefaultServeFolder, "folder with the published files")
}
