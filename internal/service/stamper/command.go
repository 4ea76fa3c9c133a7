package stamper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/watermark-tool/internal/console"
	"github.com/oshokin/watermark-tool/internal/logger"
)

const (
	// DefaultOpacity matches the application's default mark transparency.
	DefaultOpacity = 30

	maxOpacity = 100

	outputDirMode = 0o755
)

var (
	errInvalidOpacity = errors.New("opacity must be between 0 and 100")
	errNoImagesFound  = errors.New("no supported images found")
	errFilesFailed    = errors.New("files failed")
)

// Options configures the watermarking run.
type Options struct {
	// Text is drawn into the bottom-right corner of every image.
	// Empty text copies the images without a mark.
	Text string
	// Opacity is the mark transparency in percent, 0 to 100.
	Opacity int
	// OutputDir receives the stamped copies, created if absent.
	OutputDir string
	// FontPath overrides the font lookup with an explicit TTF/TTC file.
	FontPath string
	// Inputs are the files and folders to process.
	Inputs []string
}

// worker carries the state of one watermarking run.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type worker struct {
	opts   *Options
	source *fontSource
	images []string
}

// Run watermarks every image named by the options. Failed files are
// collected and reported in a summary; any failure makes the run return
// an error, while the remaining files are still written.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "watermark-stamper")

	if opts.Opacity < 0 || opts.Opacity > maxOpacity {
		return fmt.Errorf("%d: %w", opts.Opacity, errInvalidOpacity)
	}

	if opts.Text == "" {
		logger.Warn(ctx, "Watermark text is empty, images will be copied without a mark")
	}

	images, err := collectImages(ctx, opts.Inputs)
	if err != nil {
		return err
	}

	if len(images) == 0 {
		return errNoImagesFound
	}

	if err = os.MkdirAll(opts.OutputDir, outputDirMode); err != nil {
		return fmt.Errorf("create output folder %s: %w", opts.OutputDir, err)
	}

	source, err := loadFontSource(ctx, opts.FontPath)
	if err != nil {
		return err
	}

	w := &worker{
		opts:   opts,
		source: source,
		images: images,
	}

	return w.Run(ctx)
}

// Run processes every collected image and prints the outcome.
func (w *worker) Run(ctx context.Context) error {
	console.Task("Watermarking %d image(s)", len(w.images))

	var (
		bar       = newCountProgressBar(len(w.images))
		failures  = make([]fileFailure, 0)
		written   int
		startedAt = time.Now()
	)

	for _, path := range w.images {
		if err := ctx.Err(); err != nil {
			return err
		}

		outputPath, err := stampFile(path, w.opts.OutputDir, w.opts.Text, w.opts.Opacity, w.source)
		if err != nil {
			failures = append(failures, fileFailure{path: path, err: err})

			logger.WarnKV(ctx, "Failed to process file", "path", path, "error", err)
		} else {
			written++

			logger.DebugKV(ctx, "Wrote stamped file", "path", outputPath)
		}

		// Bar rendering errors are not actionable.
		_ = bar.Add(1)
	}

	w.printSummary(written, failures, time.Since(startedAt))

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d: %w", len(failures), len(w.images), errFilesFailed)
	}

	return nil
}

// fileFailure pairs a failed input with its error for the summary.
type fileFailure struct {
	path string
	err  error
}

// printSummary reports per-file failures and the final verdict on the console.
func (w *worker) printSummary(written int, failures []fileFailure, elapsed time.Duration) {
	for _, failure := range failures {
		console.Error("%s: %v", filepath.Base(failure.path), failure.err)
	}

	if len(failures) > 0 {
		console.Failure("Processed %d of %d images, %d failed", written, len(w.images), len(failures))

		return
	}

	console.Success("Watermarked %d image(s) into %s in %s",
		written, w.opts.OutputDir, elapsed.Round(time.Millisecond))
}

// newCountProgressBar returns a file counter bar.
// On CI the bar is hidden so the logs stay readable.
func newCountProgressBar(total int) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(int64(total), progressbar.OptionSetVisibility(false))
	}

	return progressbar.Default(int64(total), "Stamping images")
}
