package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/watermark-tool/internal/service/stamper"
	"github.com/oshokin/watermark-tool/internal/version"
)

var (
	// text drawn into the bottom-right corner of every image.
	text string
	// opacity of the mark in percent.
	opacity int
	// outputDir receives the stamped copies.
	outputDir string
	// fontPath optionally overrides the font lookup.
	fontPath string

	// rootCmd represents the base command for watermarking images.
	rootCmd = &cobra.Command{
		Use:   "watermark-stamper <file|folder>...",
		Short: "Watermark images in bulk.",
		Long: `Draws the given text into the bottom-right corner of every supported image
and writes the results into the output folder under the same names.

Folders are walked recursively; .jpg, .jpeg, .png, .bmp, .gif, .tiff and
.webp files are picked up. The mark scales with the image width. Files the
tool cannot process are reported at the end without stopping the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &stamper.Options{
				Text:      text,
				Opacity:   opacity,
				OutputDir: outputDir,
				FontPath:  fontPath,
				Inputs:    args,
			}

			return stamper.Run(ctx, options)
		},
	}
)

// Execute runs the watermark-stamper CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&text, "text", "t", "", "watermark text")
	rootCmd.Flags().IntVarP(&opacity, "opacity", "p", stamper.DefaultOpacity, "mark opacity in percent, 0 to 100")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "folder for the stamped copies")
	rootCmd.Flags().StringVarP(&fontPath, "font", "f", "", "font file overriding the built-in lookup")

	err := rootCmd.MarkFlagRequired("output")
	if err != nil {
		panic(err)
	}
}
